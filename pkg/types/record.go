// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MatchStatus classifies the outcome of linking one metadata row against
// the parsed abstract corpus.
type MatchStatus string

const (
	// MatchExact means the normalized titles were identical.
	MatchExact MatchStatus = "Exact"

	// MatchFuzzy means the best similarity score met the acceptance threshold.
	MatchFuzzy MatchStatus = "Fuzzy"

	// MatchNone means no corpus record scored at or above the threshold.
	MatchNone MatchStatus = "None"

	// MatchExisting means the row already carried an abstract; no lookup ran.
	MatchExisting MatchStatus = "Existing"
)

// RawAbstractRecord is one sequentially numbered entry parsed from the
// plain-text abstract corpus. Records are built once per parse pass and
// never mutated afterwards.
type RawAbstractRecord struct {
	// SequenceIndex is the record number as printed in the source. It is
	// used for deterministic tie-breaking and is not assumed contiguous.
	SequenceIndex int `json:"sequence_index" yaml:"sequence_index"`

	// Title is the record title, joined across physical lines.
	Title string `json:"title" yaml:"title"`

	// AuthorBlock is the author list following the title, if detected.
	AuthorBlock string `json:"author_block,omitempty" yaml:"author_block,omitempty"`

	// DOI is the record's DOI, if one was found in the record body.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// AbstractBody is the abstract text remaining after title, author
	// block, and DOI removal.
	AbstractBody string `json:"abstract_body" yaml:"abstract_body"`
}

// MetadataRecord is one row of the structured metadata table. An empty
// Abstract is what triggers linkage for the row.
type MetadataRecord struct {
	// Title is the paper title from the metadata table.
	Title string `json:"title" yaml:"title"`

	// Abstract is the existing abstract, empty when the row needs linkage.
	Abstract string `json:"abstract" yaml:"abstract"`

	// DOI is the row's DOI column, empty when absent.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Fields holds every source column verbatim, including Title, Abstract,
	// and DOI. Passthrough columns are never altered by the pipeline.
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// Clone returns a copy of the record with its own Fields map, so stages
// that attach columns never mutate the source table.
func (r MetadataRecord) Clone() MetadataRecord {
	fields := make(map[string]string, len(r.Fields)+4)
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

// MatchResult is the immutable outcome of matching one metadata row.
// Exactly one result is produced per row, in input order.
type MatchResult struct {
	// Row is the zero-based index of the metadata row this result belongs to.
	Row int `json:"row" yaml:"row"`

	// Status is the match classification.
	Status MatchStatus `json:"status" yaml:"status"`

	// MatchedTitle is the corpus record's title, empty unless matched.
	MatchedTitle string `json:"matched_title,omitempty" yaml:"matched_title,omitempty"`

	// Similarity is 1.0 for Exact, the blended score for Fuzzy, and 0.0
	// for None and Existing.
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// AbstractText is the abstract copied from the matched record. Empty
	// for None; for Existing the row's own abstract is kept instead.
	AbstractText string `json:"abstract_text,omitempty" yaml:"abstract_text,omitempty"`

	// MatchedDOI is the matched record's DOI, used to backfill rows that
	// lack one.
	MatchedDOI string `json:"matched_doi,omitempty" yaml:"matched_doi,omitempty"`

	// ClosestTitle and ClosestSimilarity describe the best candidate that
	// fell below the threshold. Populated only for None, for manual triage.
	ClosestTitle      string  `json:"closest_title,omitempty" yaml:"closest_title,omitempty"`
	ClosestSimilarity float64 `json:"closest_similarity,omitempty" yaml:"closest_similarity,omitempty"`

	// FailureReason classifies a None result: no candidate scored above
	// zero, or the best candidate fell below the threshold.
	FailureReason string `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
}

// StatusDisplay returns the human-readable match status written to the
// merged output table.
func (r MatchResult) StatusDisplay() string {
	switch r.Status {
	case MatchExact, MatchFuzzy:
		return "Success"
	case MatchExisting:
		return "Had Abstract"
	case MatchNone:
		if r.FailureReason != "" {
			return "Failed: " + r.FailureReason
		}
		return "Failed"
	default:
		return string(r.Status)
	}
}
