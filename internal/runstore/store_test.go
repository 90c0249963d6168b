// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/screening-engine/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "nested", "runs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := RunRecord{
		StartedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		MetadataFile:  "papers.csv",
		CorpusFile:    "abstracts.txt",
		Threshold:     0.7,
		Rows:          120,
		CorpusRecords: 118,
		ExactMatches:  90,
		FuzzyMatches:  20,
		Existing:      5,
		Failed:        5,
	}
	firstID, err := s.RecordRun(ctx, first, nil)
	require.NoError(t, err)
	assert.Positive(t, firstID)

	second := first
	second.StartedAt = second.StartedAt.Add(time.Hour)
	second.Threshold = 0.8
	secondID, err := s.RecordRun(ctx, second, []Failure{
		{Title: "Lost Paper", Reason: "best candidate 0.65 below threshold 0.80", ClosestTitle: "Close Paper", ClosestSimilarity: 0.65},
	})
	require.NoError(t, err)
	assert.Greater(t, secondID, firstID)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, secondID, runs[0].ID, "newest first")
	assert.Equal(t, 0.8, runs[0].Threshold)
	assert.Equal(t, first.StartedAt, runs[1].StartedAt)
	assert.Equal(t, 90, runs[1].ExactMatches)
}

func TestFailuresPerRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := RunRecord{StartedAt: time.Now().UTC(), Rows: 2, Failed: 2}
	id, err := s.RecordRun(ctx, run, []Failure{
		{Title: "First Miss", Reason: "empty title"},
		{Title: "Second Miss", Reason: "no candidate scored above zero"},
	})
	require.NoError(t, err)

	other, err := s.RecordRun(ctx, RunRecord{StartedAt: time.Now().UTC()}, nil)
	require.NoError(t, err)

	failures, err := s.Failures(ctx, id)
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "First Miss", failures[0].Title)
	assert.Equal(t, "no candidate scored above zero", failures[1].Reason)

	none, err := s.Failures(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(types.StoreConfig{DBPath: path})
	require.NoError(t, err)
	_, err = s.RecordRun(context.Background(), RunRecord{StartedAt: time.Now().UTC()}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Re-opening an existing database keeps its data.
	s, err = Open(types.StoreConfig{DBPath: path})
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
