// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/pdiddy/screening-engine/pkg/types"
)

// Scorer computes the blended title similarity: whole-string sequence
// similarity weighted against significant-token overlap.
type Scorer struct {
	seqWeight float64
	tokWeight float64
	minToken  int
	stopwords map[string]struct{}
}

// NewScorer builds a Scorer from cfg; zero values fall back to defaults.
func NewScorer(cfg types.LinkConfig) *Scorer {
	cfg = cfg.WithDefaults()
	stop := make(map[string]struct{}, len(cfg.Stopwords))
	for _, w := range cfg.Stopwords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Scorer{
		seqWeight: cfg.SequenceWeight,
		tokWeight: cfg.TokenWeight,
		minToken:  cfg.MinTokenLength,
		stopwords: stop,
	}
}

// SignificantTokens returns the keyword set of a title after stopword and
// short-token suppression. Duplicates within a title collapse. An empty
// set means token similarity is undefined for this title.
func (s *Scorer) SignificantTokens(title string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(title)) {
		if len(w) < s.minToken {
			continue
		}
		if _, stop := s.stopwords[w]; stop {
			continue
		}
		tokens[w] = struct{}{}
	}
	return tokens
}

// Score returns the blended similarity of two titles in [0, 1]. It is
// symmetric and returns 1.0 for titles with equal normalized keys. When
// one side has no significant tokens the full weight shifts to sequence
// similarity, so stopword-only titles are not floored at zero.
func (s *Scorer) Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	seq := sequenceRatio(na, nb)

	ta, tb := s.SignificantTokens(a), s.SignificantTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return seq
	}
	return s.seqWeight*seq + s.tokWeight*jaccard(ta, tb)
}

// sequenceRatio is the character-level longest-common-subsequence ratio
// 2*LCS/(len(a)+len(b)) over runes: symmetric, 1.0 for identical
// strings, 0.0 for disjoint ones.
func sequenceRatio(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la+lb == 0 {
		return 0
	}
	return 2 * float64(edlib.LCS(a, b)) / float64(la+lb)
}

// jaccard is intersection-over-union of two token sets.
func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
