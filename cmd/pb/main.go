// Package main provides the pb CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/paperbase/paperbase/internal/catalog"
	"github.com/paperbase/paperbase/internal/config"
	"github.com/paperbase/paperbase/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pb",
	Short: "Reconcile bibliographic records across paper catalogs",
	Long: `pb fetches paper metadata from multiple catalogs, resolves which
records describe the same publication, and fuses them into single
canonical entries.

Core features:
  - Multi-catalog search (arXiv, Semantic Scholar, Crossref)
  - Entity resolution by DOI, arXiv id, and fuzzy title matching
  - Field-level fusion of catalog and PDF-extracted metadata
  - Git-versionable JSONL library with ephemeral SQLite for queries

All commands output JSON by default for scripted integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustOpenDatabase opens the SQLite index, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase() *storage.DB {
	db, err := storage.OpenDB(config.DBPath())
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// buildClients assembles the catalog clients named by sources, or all
// known catalogs when sources is empty.
func buildClients(sources []string) ([]catalog.Client, error) {
	if len(sources) == 0 {
		sources = []string{"arxiv", "semantic_scholar", "crossref"}
	}

	var clients []catalog.Client
	for _, s := range sources {
		switch s {
		case "arxiv":
			clients = append(clients, catalog.NewArxivClient())
		case "semantic_scholar", "s2":
			var opts []catalog.S2Option
			if key := config.GetS2APIKey(); key != "" {
				opts = append(opts, catalog.WithS2APIKey(key))
			}
			clients = append(clients, catalog.NewS2Client(opts...))
		case "crossref":
			var opts []catalog.CrossrefOption
			if mailto := config.GetCrossrefMailto(); mailto != "" {
				opts = append(opts, catalog.WithCrossrefMailto(mailto))
			}
			clients = append(clients, catalog.NewCrossrefClient(opts...))
		default:
			return nil, fmt.Errorf("unknown source: %s (valid: arxiv, semantic_scholar, crossref)", s)
		}
	}
	return clients, nil
}
