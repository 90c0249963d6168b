// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/screening-engine/internal/screen"
	"github.com/pdiddy/screening-engine/internal/tabular"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Apply rule-based inclusion criteria to a linked dataset",
	Long: `Screen reads a CSV dataset (typically the complete output of link) and
a YAML criteria file, searches each row's title and abstract for the
criteria keywords, and writes a timestamped CSV with one matched-keywords
column per criterion plus an include/exclude verdict.

A row is included only when every criterion matches at least one keyword.
Single-word keywords match on word boundaries, multi-word phrases match
as substrings, and '*' in a keyword spans word characters.`,
	RunE: runScreen,
}

func init() {
	screenCmd.Flags().String("input", "", "CSV dataset to screen (required)")
	screenCmd.Flags().String("criteria", "", "YAML criteria file (required)")
	screenCmd.Flags().String("output-dir", "output", "directory for the results CSV")
	screenCmd.MarkFlagRequired("input")
	screenCmd.MarkFlagRequired("criteria")

	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, args []string) error {
	inputFile, _ := cmd.Flags().GetString("input")
	criteriaFile, _ := cmd.Flags().GetString("criteria")
	outputDir := flagOrConfigString(cmd, "output-dir")

	f, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("opening input table: %w", err)
	}
	table, err := tabular.Read(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputFile, err)
	}

	criteria, err := screen.LoadCriteria(criteriaFile)
	if err != nil {
		return err
	}
	screener, err := screen.NewScreener(criteria)
	if err != nil {
		return err
	}

	out, stats := screener.Apply(table)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(outputDir, "screening_results_"+time.Now().Format(timestampLayout)+".csv")
	if err := writeTable(outPath, out); err != nil {
		return err
	}

	fmt.Printf("Screened %d rows against %d criteria: %d included, %d excluded\n",
		len(table.Records), len(criteria), stats.Included, stats.Excluded)
	fmt.Println("Results:", outPath)
	return nil
}
