package main

import (
	"fmt"

	"github.com/paperbase/paperbase/internal/config"
	"github.com/paperbase/paperbase/internal/dedup"
	"github.com/paperbase/paperbase/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dedupeDryRun    bool
	dedupeWrite     bool
	dedupeThreshold float64
	dedupeInput     string
)

func init() {
	dedupeCmd.Flags().BoolVar(&dedupeDryRun, "dry-run", false, "Show the outcome without touching the library")
	dedupeCmd.Flags().BoolVar(&dedupeWrite, "write", false, "Rewrite the library with fused records")
	dedupeCmd.Flags().Float64Var(&dedupeThreshold, "threshold", 0, "Title similarity threshold (default from config or 0.85)")
	dedupeCmd.Flags().StringVar(&dedupeInput, "input", "", "Dedupe a JSONL file instead of the library")
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Fuse duplicate records in the local library",
	Long: `Resolve which library records describe the same publication and fuse
each group into one canonical record.

Examples:
  pb dedupe --dry-run               # Report how many records would be fused
  pb dedupe --write                 # Rewrite the library with fused records
  pb dedupe --input raw.jsonl --write`,
	RunE: runDedupe,
}

// DedupeResult reports the outcome of a dedupe run.
type DedupeResult struct {
	DryRun  bool `json:"dry_run"`
	Before  int  `json:"before"`
	After   int  `json:"after"`
	Removed int  `json:"removed"`
}

func runDedupe(cmd *cobra.Command, args []string) error {
	if !dedupeDryRun && !dedupeWrite {
		return fmt.Errorf("must specify either --dry-run or --write")
	}

	path := dedupeInput
	if path == "" {
		path = config.PapersPath()
	}
	papers, err := storage.ReadAll(path)
	if err != nil {
		exitWithError(ExitDataError, "reading library: %v", err)
	}

	threshold := dedupeThreshold
	if threshold == 0 {
		threshold = config.GetSimilarityThreshold()
	}
	var opts []dedup.Option
	if threshold > 0 {
		opts = append(opts, dedup.WithThreshold(threshold))
	}

	fused := dedup.New(opts...).Deduplicate(papers)
	result := DedupeResult{
		DryRun:  dedupeDryRun,
		Before:  len(papers),
		After:   len(fused),
		Removed: len(papers) - len(fused),
	}

	if dedupeWrite {
		if err := storage.WriteAll(path, fused); err != nil {
			exitWithError(ExitDataError, "writing library: %v", err)
		}
		// The index mirrors the library only; external files don't touch it.
		if dedupeInput == "" {
			db := mustOpenDatabase()
			defer db.Close()
			if _, err := db.RebuildFromJSONL(path); err != nil {
				exitWithError(ExitError, "rebuilding index: %v", err)
			}
		}
	}

	if humanOutput {
		verb := "would fuse"
		if dedupeWrite {
			verb = "fused"
		}
		fmt.Printf("%d records, %s into %d (%d removed)\n", result.Before, verb, result.After, result.Removed)
		return nil
	}
	return outputJSON(result)
}
