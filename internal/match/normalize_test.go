// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Effects of Mindfulness", "effects of mindfulness"},
		{"strips punctuation", "Anxiety, Depression & Stress: A Review!", "anxiety depression stress a review"},
		{"keeps hyphens", "Evidence-Based Practice", "evidence-based practice"},
		{"collapses whitespace", "  a   b\t c  ", "a b c"},
		{"trailing period", "Depression App.", "depression app"},
		{"unicode digits kept", "COVID-19 outcomes", "covid-19 outcomes"},
		{"empty", "", ""},
		{"punctuation only", "?!, .:", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Effects of Mindfulness on Stress!",
		"Evidence-Based  Practice: an update",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
