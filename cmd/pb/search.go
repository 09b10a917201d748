package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/paperbase/paperbase/internal/catalog"
	"github.com/paperbase/paperbase/internal/config"
	"github.com/paperbase/paperbase/internal/dedup"
	"github.com/paperbase/paperbase/internal/pipeline"
	"github.com/paperbase/paperbase/internal/storage"
	"github.com/spf13/cobra"
)

var (
	searchSources []string
	searchFrom    string
	searchTo      string
	searchMax     int
	searchSave    bool
)

func init() {
	searchCmd.Flags().StringSliceVar(&searchSources, "source", nil, "Catalogs to query (arxiv, semantic_scholar, crossref); default all")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "Earliest publication date (YYYY or YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "Latest publication date (YYYY or YYYY-MM-DD)")
	searchCmd.Flags().IntVar(&searchMax, "max", 0, "Maximum results per catalog")
	searchCmd.Flags().BoolVar(&searchSave, "save", false, "Merge results into the local library")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search catalogs and reconcile the results",
	Long: `Search all configured catalogs for a query, resolve which records
describe the same publication, and print one fused record per paper.

Examples:
  pb search "sparse attention"
  pb search "graph neural networks" --source arxiv --source crossref --max 10
  pb search "diffusion models" --from 2022 --save`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	clients, err := buildClients(searchSources)
	if err != nil {
		return err
	}

	filters := catalog.Filters{MaxResults: searchMax}
	if filters.MaxResults == 0 {
		filters.MaxResults = config.GetMaxResults()
	}
	if filters.From, err = parseDateFlag(searchFrom, false); err != nil {
		return err
	}
	if filters.To, err = parseDateFlag(searchTo, true); err != nil {
		return err
	}

	var opts []pipeline.Option
	if threshold := config.GetSimilarityThreshold(); threshold > 0 {
		opts = append(opts, pipeline.WithDeduplicator(dedup.New(dedup.WithThreshold(threshold))))
	}

	p := pipeline.New(clients, opts...)
	result, err := p.Run(cmd.Context(), args[0], filters)
	if err != nil {
		exitWithError(ExitAPIError, "searching catalogs: %v", err)
	}

	if searchSave {
		if err := saveResults(result); err != nil {
			exitWithError(ExitDataError, "saving results: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Found %d papers (%d records fetched) for %q\n\n",
			result.Stats.Unique, result.Stats.TotalFetched, result.Query)
		printPapersHuman(result.Papers)
		for source, msg := range result.Stats.SourceErrors {
			fmt.Printf("warning: %s failed: %s\n", source, msg)
		}
		return nil
	}
	return outputJSON(result)
}

// saveResults merges run output into the JSONL library and refreshes
// the SQLite index for the touched papers.
func saveResults(result *pipeline.Result) error {
	path := config.PapersPath()
	existing, err := storage.ReadAll(path)
	if err != nil {
		return err
	}

	merged, _, _ := storage.MergeInto(existing, result.Papers)
	if err := storage.WriteAll(path, merged); err != nil {
		return err
	}

	db := mustOpenDatabase()
	defer db.Close()
	for _, p := range result.Papers {
		if err := db.Upsert(p); err != nil {
			return err
		}
	}
	return nil
}

// parseDateFlag accepts YYYY or YYYY-MM-DD. A bare year maps to Jan 1,
// or Dec 31 when it bounds the upper end of the range.
func parseDateFlag(s string, upper bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if !strings.Contains(s, "-") {
		t, err := time.Parse("2006", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: use YYYY or YYYY-MM-DD", s)
		}
		if upper {
			return time.Date(t.Year(), 12, 31, 0, 0, 0, 0, time.UTC), nil
		}
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY or YYYY-MM-DD", s)
	}
	return t, nil
}
