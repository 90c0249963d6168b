// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/screening-engine/internal/corpus"
	"github.com/pdiddy/screening-engine/internal/match"
	"github.com/pdiddy/screening-engine/internal/runstore"
	"github.com/pdiddy/screening-engine/internal/tabular"
	"github.com/pdiddy/screening-engine/pkg/types"
)

const timestampLayout = "20060102_150405"

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link metadata rows to abstract corpus records by title",
	Long: `Link reads a CSV metadata table and a plain-text abstract corpus,
matches every row lacking an abstract against the corpus by normalized
title (exact first, then fuzzy above the similarity threshold), and
writes two timestamped CSVs: the complete merged dataset and the
failed-match subset for manual triage.

Rows that already carry an abstract are kept as-is. Matched rows gain
the record's abstract and, when missing, its DOI.`,
	RunE: runLink,
}

func init() {
	linkCmd.Flags().String("metadata", "", "CSV metadata table (required)")
	linkCmd.Flags().String("corpus", "", "plain-text abstract corpus (required)")
	linkCmd.Flags().String("output-dir", "output", "directory for result CSVs")
	linkCmd.Flags().Float64("threshold", 0.7, "minimum similarity for a fuzzy match")
	linkCmd.Flags().Float64("sequence-weight", 0.6, "weight of whole-string sequence similarity")
	linkCmd.Flags().Float64("token-weight", 0.4, "weight of significant-token overlap")
	linkCmd.Flags().Int("min-token-length", 3, "shortest token kept by the tokenizer")
	linkCmd.Flags().Int("max-field-length", 10000, "longest parsed field before truncation")
	linkCmd.Flags().Int("workers", 4, "concurrent fuzzy scans")
	linkCmd.Flags().String("db", "", "record the run in this SQLite database (optional)")
	linkCmd.MarkFlagRequired("metadata")
	linkCmd.MarkFlagRequired("corpus")

	rootCmd.AddCommand(linkCmd)
}

func linkConfigFromFlags(cmd *cobra.Command) types.LinkConfig {
	cfg := types.LinkConfig{
		SimilarityThreshold: flagOrConfigFloat(cmd, "threshold"),
		SequenceWeight:      flagOrConfigFloat(cmd, "sequence-weight"),
		TokenWeight:         flagOrConfigFloat(cmd, "token-weight"),
		MinTokenLength:      flagOrConfigInt(cmd, "min-token-length"),
		MaxFieldLength:      flagOrConfigInt(cmd, "max-field-length"),
		Workers:             flagOrConfigInt(cmd, "workers"),
		OutputDir:           flagOrConfigString(cmd, "output-dir"),
	}
	return cfg.WithDefaults()
}

func runLink(cmd *cobra.Command, args []string) error {
	metadataFile, _ := cmd.Flags().GetString("metadata")
	corpusFile, _ := cmd.Flags().GetString("corpus")
	dbPath := flagOrConfigString(cmd, "db")
	cfg := linkConfigFromFlags(cmd)

	startedAt := time.Now()

	mf, err := os.Open(metadataFile)
	if err != nil {
		return fmt.Errorf("opening metadata table: %w", err)
	}
	table, err := tabular.Read(mf)
	mf.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", metadataFile, err)
	}

	corpusText, err := os.ReadFile(corpusFile)
	if err != nil {
		return fmt.Errorf("reading corpus: %w", err)
	}
	records, parseStats, err := corpus.Parse(string(corpusText), cfg)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", corpusFile, err)
	}

	engine := match.NewEngine(records, cfg)
	results, stats, err := engine.Match(cmd.Context(), table.Records)
	if err != nil {
		return err
	}
	complete, failed := match.Assemble(table, results)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	ts := startedAt.Format(timestampLayout)
	completePath := filepath.Join(cfg.OutputDir, "title_matched_complete_"+ts+".csv")
	failedPath := filepath.Join(cfg.OutputDir, "failed_matches_"+ts+".csv")

	if err := writeTable(completePath, complete); err != nil {
		return err
	}
	if err := writeTable(failedPath, failed); err != nil {
		return err
	}

	printScoreCard(parseStats, stats, table, completePath, failedPath)

	if dbPath != "" {
		if err := recordRun(cmd.Context(), dbPath, runstore.RunRecord{
			StartedAt:       startedAt,
			MetadataFile:    metadataFile,
			CorpusFile:      corpusFile,
			Threshold:       cfg.SimilarityThreshold,
			Rows:            len(table.Records),
			CorpusRecords:   parseStats.Records,
			ExactMatches:    stats.Exact,
			FuzzyMatches:    stats.Fuzzy,
			Existing:        stats.Existing,
			Failed:          stats.None,
			DuplicateTitles: stats.DuplicateTitles,
		}, results, table); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(path string, t *tabular.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := tabular.Write(f, t); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func printScoreCard(parse corpus.Stats, stats match.Stats, table *tabular.Table, completePath, failedPath string) {
	fmt.Printf("Parsed %d corpus records (%d skipped, %d malformed, %d truncated fields)\n",
		parse.Records, parse.Skipped, parse.Malformed, parse.Truncated)
	if stats.DuplicateTitles > 0 {
		fmt.Printf("Corpus title collisions: %d\n", stats.DuplicateTitles)
	}
	if table.OverlongRows > 0 {
		fmt.Printf("Metadata rows with extra cells dropped: %d\n", table.OverlongRows)
	}
	fmt.Printf("Matched %d of %d rows: %d exact, %d fuzzy, %d already had abstracts, %d failed\n",
		stats.Matched()+stats.Existing, len(table.Records), stats.Exact, stats.Fuzzy, stats.Existing, stats.None)
	fmt.Println("Complete dataset:", completePath)
	fmt.Println("Failed matches:  ", failedPath)
}

func recordRun(ctx context.Context, dbPath string, run runstore.RunRecord, results []types.MatchResult, table *tabular.Table) error {
	store, err := runstore.Open(types.StoreConfig{DBPath: dbPath})
	if err != nil {
		return err
	}
	defer store.Close()

	var failures []runstore.Failure
	for _, r := range results {
		if r.Status != types.MatchNone {
			continue
		}
		failures = append(failures, runstore.Failure{
			Title:             table.Records[r.Row].Title,
			Reason:            r.FailureReason,
			ClosestTitle:      r.ClosestTitle,
			ClosestSimilarity: r.ClosestSimilarity,
		})
	}

	id, err := store.RecordRun(ctx, run, failures)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded run %d in %s\n", id, dbPath)
	return nil
}
