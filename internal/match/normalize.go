// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match links metadata rows to parsed abstract records by exact
// normalized-title lookup and fuzzy title similarity.
package match

import (
	"strings"
	"unicode"
)

// Normalize returns the canonical lookup key for a title: lowercased,
// with punctuation collapsed to spaces and whitespace folded. Internal
// hyphens are kept; a trailing period disappears with the rest of the
// punctuation. Two titles with equal keys are duplicates for
// exact-matching purposes. Idempotent.
func Normalize(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
