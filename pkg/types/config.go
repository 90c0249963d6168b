// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LinkConfig holds settings for the title-linkage stage. All values have
// working defaults from DefaultLinkConfig; zero values are replaced via
// WithDefaults so partial configs behave sensibly.
type LinkConfig struct {
	// SimilarityThreshold is the minimum blended score for a fuzzy match
	// to be accepted (default 0.7).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// SequenceWeight and TokenWeight blend whole-string sequence
	// similarity with significant-token overlap (defaults 0.6 and 0.4).
	// WithDefaults renormalizes them to sum to 1, so scores stay in
	// [0, 1] and either term can be disabled by setting its weight to 0.
	SequenceWeight float64 `json:"sequence_weight" yaml:"sequence_weight"`
	TokenWeight    float64 `json:"token_weight" yaml:"token_weight"`

	// MinTokenLength is the shortest token kept by the tokenizer (default 3).
	MinTokenLength int `json:"min_token_length" yaml:"min_token_length"`

	// MaxFieldLength is the longest field the parser emits before
	// truncating with a marker (default 10000).
	MaxFieldLength int `json:"max_field_length" yaml:"max_field_length"`

	// Stopwords overrides the academic stopword list when non-empty.
	Stopwords []string `json:"stopwords,omitempty" yaml:"stopwords,omitempty"`

	// Workers bounds the concurrent fuzzy scans across rows (default 4).
	// Output order is by input row regardless of completion order.
	Workers int `json:"workers" yaml:"workers"`

	// OutputDir is the directory for the merged and failed-match CSVs.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// defaultStopwords lists articles, prepositions, auxiliaries, and generic
// academic filler suppressed by the tokenizer.
var defaultStopwords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "up", "about", "into", "through", "during",
	"before", "after", "above", "below", "between", "among", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "do", "does",
	"did", "will", "would", "could", "should", "may", "might", "must", "can",
	"using", "based", "study", "research", "analysis", "trial", "systematic",
	"review", "meta",
}

// DefaultLinkConfig returns the linkage defaults.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		SimilarityThreshold: 0.7,
		SequenceWeight:      0.6,
		TokenWeight:         0.4,
		MinTokenLength:      3,
		MaxFieldLength:      10000,
		Stopwords:           defaultStopwords,
		Workers:             4,
		OutputDir:           "output",
	}
}

// WithDefaults returns a copy of c with zero values replaced by defaults
// and the blend weights renormalized to sum to 1. Weights default only
// when both are zero or either is negative.
func (c LinkConfig) WithDefaults() LinkConfig {
	d := DefaultLinkConfig()
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	switch sum := c.SequenceWeight + c.TokenWeight; {
	case c.SequenceWeight < 0 || c.TokenWeight < 0 || sum == 0:
		c.SequenceWeight = d.SequenceWeight
		c.TokenWeight = d.TokenWeight
	default:
		c.SequenceWeight /= sum
		c.TokenWeight /= sum
	}
	if c.MinTokenLength <= 0 {
		c.MinTokenLength = d.MinTokenLength
	}
	if c.MaxFieldLength <= 0 {
		c.MaxFieldLength = d.MaxFieldLength
	}
	if len(c.Stopwords) == 0 {
		c.Stopwords = d.Stopwords
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	return c
}

// ScreenConfig holds settings for the rule-based keyword screening stage.
type ScreenConfig struct {
	// CriteriaFile is the YAML file defining the screening criteria.
	CriteriaFile string `json:"criteria_file" yaml:"criteria_file"`

	// OutputDir is the directory for the screening results CSV.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// StoreConfig holds settings for the run-history store.
type StoreConfig struct {
	// DBPath is the SQLite database file (default "output/screening.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}
