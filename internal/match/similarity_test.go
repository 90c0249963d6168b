// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"math"
	"testing"

	"github.com/pdiddy/screening-engine/pkg/types"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSignificantTokens(t *testing.T) {
	s := NewScorer(types.DefaultLinkConfig())
	got := s.SignificantTokens("The Effects of Mindfulness on the Mind")
	want := []string{"effects", "mindfulness", "mind"}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for _, w := range want {
		if _, ok := got[w]; !ok {
			t.Errorf("token %q missing from %v", w, got)
		}
	}
}

func TestScoreIdentity(t *testing.T) {
	s := NewScorer(types.DefaultLinkConfig())
	titles := []string{
		"Effects of Mindfulness on Stress",
		"Evidence-Based Practice",
		"COVID-19 Outcomes in Primary Care",
	}
	for _, title := range titles {
		if got := s.Score(title, title); got != 1.0 {
			t.Errorf("Score(%q, same) = %v, want 1.0", title, got)
		}
	}
	// Equal after normalization counts as identical too.
	if got := s.Score("Depression App.", "depression app"); got != 1.0 {
		t.Errorf("normalized-equal score = %v, want 1.0", got)
	}
}

func TestScoreEmpty(t *testing.T) {
	s := NewScorer(types.DefaultLinkConfig())
	if got := s.Score("", "Anything At All"); got != 0 {
		t.Errorf("empty left = %v, want 0", got)
	}
	if got := s.Score("Anything At All", ""); got != 0 {
		t.Errorf("empty right = %v, want 0", got)
	}
	if got := s.Score("?!.", "Anything At All"); got != 0 {
		t.Errorf("punctuation-only = %v, want 0", got)
	}
}

func TestScoreSymmetric(t *testing.T) {
	s := NewScorer(types.DefaultLinkConfig())
	pairs := [][2]string{
		{"Effects of Mindfulness on Stress", "Mindfulness Effects on Chronic Stress"},
		{"Digital Interventions for Anxiety", "Anxiety and Digital Health"},
		{"abc", "abd"},
	}
	for _, p := range pairs {
		ab, ba := s.Score(p[0], p[1]), s.Score(p[1], p[0])
		if !almostEqual(ab, ba) {
			t.Errorf("Score(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestScoreBlend(t *testing.T) {
	s := NewScorer(types.DefaultLinkConfig())
	// LCS("abc","abd") = 2, so sequence = 4/6; the single-token sets are
	// disjoint, so the token term is zero.
	want := 0.6 * (4.0 / 6.0)
	if got := s.Score("abc", "abd"); !almostEqual(got, want) {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestScoreStopwordOnlyTitles(t *testing.T) {
	s := NewScorer(types.DefaultLinkConfig())
	// Both titles reduce to empty token sets, so the full weight shifts
	// to sequence similarity instead of flooring the score.
	got := s.Score("The Of", "The On")
	want := 2 * 5.0 / 12.0 // LCS("the of","the on") = 5
	if !almostEqual(got, want) {
		t.Errorf("Score = %v, want pure sequence ratio %v", got, want)
	}
}

func TestScoreCustomWeights(t *testing.T) {
	// Pure sequence weighting: the disjoint token sets must not matter.
	cfg := types.DefaultLinkConfig()
	cfg.SequenceWeight, cfg.TokenWeight = 1.0, 0
	s := NewScorer(cfg)
	if got, want := s.Score("abc", "abd"), 4.0/6.0; !almostEqual(got, want) {
		t.Errorf("pure-sequence score = %v, want %v", got, want)
	}

	// Oversized weights renormalize to halves instead of pushing the
	// score past 1.
	cfg = types.DefaultLinkConfig()
	cfg.SequenceWeight, cfg.TokenWeight = 0.9, 0.9
	s = NewScorer(cfg)
	if got, want := s.Score("abc", "abd"), 0.5*(4.0/6.0); !almostEqual(got, want) {
		t.Errorf("renormalized score = %v, want %v", got, want)
	}
}

func TestScoreRange(t *testing.T) {
	s := NewScorer(types.DefaultLinkConfig())
	pairs := [][2]string{
		{"Effects of Mindfulness on Stress", "Quantum Chromodynamics on the Lattice"},
		{"a", "completely different and much longer title"},
		{"Short", "Short Title Extended With More Words"},
	}
	for _, p := range pairs {
		got := s.Score(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Score(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}
