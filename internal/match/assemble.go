// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strconv"

	"github.com/pdiddy/screening-engine/internal/tabular"
	"github.com/pdiddy/screening-engine/pkg/types"
)

// Columns attached to the complete merged dataset.
const (
	ColMatchedTitle    = "Matched_Title"
	ColMatchType       = "Match_Type"
	ColMatchSimilarity = "Match_Similarity"
	ColMatchStatus     = "Match_Status"
)

// Columns attached to the failed-match subset for manual triage.
const (
	ColFailureReason     = "Failure_Reason"
	ColClosestTitle      = "Closest_Match_Title"
	ColClosestSimilarity = "Closest_Similarity"
)

// Assemble merges match results back into the metadata table. It returns
// the complete dataset (every row, passthrough columns untouched, match
// metadata attached, abstracts resolved) and the failed subset (None
// rows only, with closest-candidate diagnostics). No row is ever dropped
// from the complete dataset regardless of status.
func Assemble(t *tabular.Table, results []types.MatchResult) (complete, failed *tabular.Table) {
	complete = &tabular.Table{
		Columns: append(append([]string{}, t.Columns...),
			ColMatchedTitle, ColMatchType, ColMatchSimilarity, ColMatchStatus),
	}
	failed = &tabular.Table{
		Columns: append(append([]string{}, t.Columns...),
			ColFailureReason, ColClosestTitle, ColClosestSimilarity),
	}

	for i, rec := range t.Records {
		res := results[i]

		out := rec.Clone()
		if res.Status == types.MatchExact || res.Status == types.MatchFuzzy {
			out.Abstract = res.AbstractText
			out.Fields[tabular.ColAbstract] = res.AbstractText
			if out.DOI == "" && res.MatchedDOI != "" {
				out.DOI = res.MatchedDOI
				out.Fields[tabular.ColDOI] = res.MatchedDOI
			}
		}
		out.Fields[ColMatchedTitle] = res.MatchedTitle
		out.Fields[ColMatchType] = string(res.Status)
		out.Fields[ColMatchSimilarity] = formatSimilarity(res.Similarity)
		out.Fields[ColMatchStatus] = res.StatusDisplay()
		complete.Records = append(complete.Records, out)

		if res.Status == types.MatchNone {
			f := rec.Clone()
			f.Fields[ColFailureReason] = res.FailureReason
			f.Fields[ColClosestTitle] = res.ClosestTitle
			f.Fields[ColClosestSimilarity] = formatSimilarity(res.ClosestSimilarity)
			failed.Records = append(failed.Records, f)
		}
	}
	return complete, failed
}

func formatSimilarity(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
