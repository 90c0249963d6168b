// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "testing"

func TestLinkConfigWithDefaults(t *testing.T) {
	tests := []struct {
		name    string
		in      LinkConfig
		wantSeq float64
		wantTok float64
	}{
		{"zero config gets defaults", LinkConfig{}, 0.6, 0.4},
		{"explicit weights kept", LinkConfig{SequenceWeight: 0.6, TokenWeight: 0.4}, 0.6, 0.4},
		{"zero token weight disables the token term", LinkConfig{SequenceWeight: 1.0}, 1.0, 0.0},
		{"zero sequence weight disables the sequence term", LinkConfig{TokenWeight: 0.5}, 0.0, 1.0},
		{"oversized weights renormalized", LinkConfig{SequenceWeight: 0.9, TokenWeight: 0.9}, 0.5, 0.5},
		{"negative weight falls back to defaults", LinkConfig{SequenceWeight: -1, TokenWeight: 0.4}, 0.6, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.WithDefaults()
			if got.SequenceWeight != tt.wantSeq || got.TokenWeight != tt.wantTok {
				t.Errorf("weights = %v/%v, want %v/%v",
					got.SequenceWeight, got.TokenWeight, tt.wantSeq, tt.wantTok)
			}
			if sum := got.SequenceWeight + got.TokenWeight; sum != 1.0 {
				t.Errorf("weights sum to %v, want 1", sum)
			}
		})
	}
}

func TestLinkConfigWithDefaultsFillsZeroValues(t *testing.T) {
	got := LinkConfig{}.WithDefaults()
	want := DefaultLinkConfig()
	if got.SimilarityThreshold != want.SimilarityThreshold {
		t.Errorf("SimilarityThreshold = %v, want %v", got.SimilarityThreshold, want.SimilarityThreshold)
	}
	if got.MinTokenLength != want.MinTokenLength || got.MaxFieldLength != want.MaxFieldLength {
		t.Errorf("token/field limits = %d/%d, want %d/%d",
			got.MinTokenLength, got.MaxFieldLength, want.MinTokenLength, want.MaxFieldLength)
	}
	if got.Workers != want.Workers || got.OutputDir != want.OutputDir {
		t.Errorf("workers/output = %d/%q, want %d/%q",
			got.Workers, got.OutputDir, want.Workers, want.OutputDir)
	}
	if len(got.Stopwords) == 0 {
		t.Error("stopword list not defaulted")
	}
}
