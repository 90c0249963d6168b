// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runstore persists the score-card and failed matches of each
// linkage run in a SQLite database, so reviewers can compare runs as
// thresholds and criteria evolve.
package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/screening-engine/pkg/types"
)

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the run-history database at path, creating the
// parent directory and schema as needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.DBPath
	if path == "" {
		path = filepath.Join("output", "screening.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			metadata_file TEXT,
			corpus_file TEXT,
			threshold REAL,
			rows INTEGER,
			corpus_records INTEGER,
			exact_matches INTEGER,
			fuzzy_matches INTEGER,
			existing INTEGER,
			failed INTEGER,
			duplicate_titles INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS failures (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			title TEXT,
			reason TEXT,
			closest_title TEXT,
			closest_similarity REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_run_id ON failures(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunRecord is the persisted score-card of one linkage run.
type RunRecord struct {
	ID              int64
	StartedAt       time.Time
	MetadataFile    string
	CorpusFile      string
	Threshold       float64
	Rows            int
	CorpusRecords   int
	ExactMatches    int
	FuzzyMatches    int
	Existing        int
	Failed          int
	DuplicateTitles int
}

// Failure is one unmatched row persisted for a run.
type Failure struct {
	Title             string
	Reason            string
	ClosestTitle      string
	ClosestSimilarity float64
}

// RecordRun persists a run and its failures in one transaction and
// returns the new run ID.
func (s *Store) RecordRun(ctx context.Context, run RunRecord, failures []Failure) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, metadata_file, corpus_file, threshold, rows,
			corpus_records, exact_matches, fuzzy_matches, existing, failed, duplicate_titles)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339), run.MetadataFile, run.CorpusFile,
		run.Threshold, run.Rows, run.CorpusRecords, run.ExactMatches,
		run.FuzzyMatches, run.Existing, run.Failed, run.DuplicateTitles)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, f := range failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO failures (run_id, title, reason, closest_title, closest_similarity)
			VALUES (?, ?, ?, ?, ?)`,
			runID, f.Title, f.Reason, f.ClosestTitle, f.ClosestSimilarity); err != nil {
			return 0, fmt.Errorf("inserting failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns every recorded run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, metadata_file, corpus_file, threshold, rows,
			corpus_records, exact_matches, fuzzy_matches, existing, failed, duplicate_titles
		FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started string
		if err := rows.Scan(&r.ID, &started, &r.MetadataFile, &r.CorpusFile,
			&r.Threshold, &r.Rows, &r.CorpusRecords, &r.ExactMatches,
			&r.FuzzyMatches, &r.Existing, &r.Failed, &r.DuplicateTitles); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("parsing run %d timestamp: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Failures returns the failed matches recorded for a run.
func (s *Store) Failures(ctx context.Context, runID int64) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, reason, closest_title, closest_similarity
		FROM failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Title, &f.Reason, &f.ClosestTitle, &f.ClosestSimilarity); err != nil {
			return nil, fmt.Errorf("scanning failure: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}
