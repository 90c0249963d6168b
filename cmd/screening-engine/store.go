// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/screening-engine/internal/runstore"
	"github.com/pdiddy/screening-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the run-history database",
	Long: `Store queries the SQLite run history written by link --db. Use
subcommands to list recorded runs or show the failed matches of one run.`,
}

var storeRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded linkage runs, newest first",
	RunE:  runStoreRuns,
}

var storeFailuresCmd = &cobra.Command{
	Use:   "failures [run-id]",
	Short: "Show the failed matches recorded for a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreFailures,
}

func init() {
	storeCmd.PersistentFlags().String("db", "output/screening.db", "run-history SQLite database")
	storeCmd.PersistentFlags().Bool("json", false, "output results as JSON")

	storeCmd.AddCommand(storeRunsCmd)
	storeCmd.AddCommand(storeFailuresCmd)
	rootCmd.AddCommand(storeCmd)
}

func openStoreFromFlags(cmd *cobra.Command) (*runstore.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	return runstore.Open(types.StoreConfig{DBPath: dbPath})
}

func runStoreRuns(cmd *cobra.Command, args []string) error {
	store, err := openStoreFromFlags(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-9s  %-6s  %-6s  %-6s  %-8s  %-6s  %s\n",
		"ID", "Started", "Threshold", "Rows", "Exact", "Fuzzy", "Existing", "Failed", "Metadata")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-9.2f  %-6d  %-6d  %-6d  %-8d  %-6d  %s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Threshold, r.Rows,
			r.ExactMatches, r.FuzzyMatches, r.Existing, r.Failed, r.MetadataFile)
	}
	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

func runStoreFailures(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	store, err := openStoreFromFlags(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	failures, err := store.Failures(cmd.Context(), runID)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(failures)
	}

	if len(failures) == 0 {
		fmt.Println("No failures recorded for this run.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-50s  %-45s  %-10s  %s\n",
		"Title", "Reason", "Closest", "Closest Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 130))
	for _, f := range failures {
		title := f.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		reason := f.Reason
		if len(reason) > 45 {
			reason = reason[:42] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-50s  %-45s  %-10.4f  %s\n",
			title, reason, f.ClosestSimilarity, f.ClosestTitle)
	}
	fmt.Fprintf(os.Stdout, "\n%d failures\n", len(failures))
	return nil
}
