// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/screening-engine/pkg/types"
)

// Stats is the score-card for one matching run.
type Stats struct {
	Exact    int
	Fuzzy    int
	None     int
	Existing int

	// DuplicateTitles counts parsed records whose normalized title
	// collided with an earlier record during index construction.
	DuplicateTitles int
}

// Total returns the number of rows matched.
func (s Stats) Total() int { return s.Exact + s.Fuzzy + s.None + s.Existing }

// Matched returns the rows that gained an abstract this run.
func (s Stats) Matched() int { return s.Exact + s.Fuzzy }

// Engine matches metadata rows against an immutable set of parsed
// abstract records. Exact matching goes through a normalized-title
// index; fuzzy matching scans every record, which is the dominant cost
// at O(rows x records).
type Engine struct {
	scorer     *Scorer
	threshold  float64
	workers    int
	records    []types.RawAbstractRecord
	byKey      map[string]int
	duplicates int
}

// NewEngine indexes records for matching. When several records normalize
// to the same title key, the one with the lowest sequence index wins and
// every collision is counted, never silently dropped.
func NewEngine(records []types.RawAbstractRecord, cfg types.LinkConfig) *Engine {
	cfg = cfg.WithDefaults()
	e := &Engine{
		scorer:    NewScorer(cfg),
		threshold: cfg.SimilarityThreshold,
		workers:   cfg.Workers,
		records:   records,
		byKey:     make(map[string]int, len(records)),
	}
	for i, rec := range records {
		key := Normalize(rec.Title)
		if key == "" {
			continue
		}
		if prev, ok := e.byKey[key]; ok {
			e.duplicates++
			if rec.SequenceIndex < records[prev].SequenceIndex {
				e.byKey[key] = i
			}
			continue
		}
		e.byKey[key] = i
	}
	return e
}

// Match produces exactly one MatchResult per row, in input row order.
// Rows are scored concurrently; each scan is read-only over the shared
// record index and writes only its own slot, so output order never
// depends on completion order.
func (e *Engine) Match(ctx context.Context, rows []types.MetadataRecord) ([]types.MatchResult, Stats, error) {
	results := make([]types.MatchResult, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = e.matchRow(i, row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{DuplicateTitles: e.duplicates}
	for _, r := range results {
		switch r.Status {
		case types.MatchExact:
			stats.Exact++
		case types.MatchFuzzy:
			stats.Fuzzy++
		case types.MatchExisting:
			stats.Existing++
		default:
			stats.None++
		}
	}
	return results, stats, nil
}

func (e *Engine) matchRow(i int, row types.MetadataRecord) types.MatchResult {
	if strings.TrimSpace(row.Abstract) != "" {
		return types.MatchResult{
			Row:          i,
			Status:       types.MatchExisting,
			AbstractText: row.Abstract,
		}
	}

	if key := Normalize(row.Title); key != "" {
		if idx, ok := e.byKey[key]; ok {
			rec := e.records[idx]
			return types.MatchResult{
				Row:          i,
				Status:       types.MatchExact,
				MatchedTitle: rec.Title,
				Similarity:   1.0,
				AbstractText: rec.AbstractBody,
				MatchedDOI:   rec.DOI,
			}
		}
	}

	// Full scan. Ties at the maximum score go to the record with the
	// lowest sequence index.
	best := -1
	bestScore := 0.0
	for j, rec := range e.records {
		score := e.scorer.Score(row.Title, rec.Title)
		switch {
		case best < 0 || score > bestScore:
			best, bestScore = j, score
		case score == bestScore && rec.SequenceIndex < e.records[best].SequenceIndex:
			best = j
		}
	}

	if best >= 0 && bestScore >= e.threshold {
		rec := e.records[best]
		return types.MatchResult{
			Row:          i,
			Status:       types.MatchFuzzy,
			MatchedTitle: rec.Title,
			Similarity:   bestScore,
			AbstractText: rec.AbstractBody,
			MatchedDOI:   rec.DOI,
		}
	}

	res := types.MatchResult{Row: i, Status: types.MatchNone}
	if best >= 0 {
		res.ClosestTitle = e.records[best].Title
		res.ClosestSimilarity = bestScore
	}
	switch {
	case row.Title == "":
		res.FailureReason = "empty title"
	case bestScore == 0:
		res.FailureReason = "no candidate scored above zero"
	default:
		res.FailureReason = fmt.Sprintf("best candidate %.2f below threshold %.2f", bestScore, e.threshold)
	}
	return res
}
