package main

import (
	"fmt"

	"github.com/paperbase/paperbase/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the SQLite index from the JSONL library",
	Long: `Rebuild the ephemeral SQLite search index from papers.jsonl. The JSONL
file is the source of truth; run this after editing it by hand or
pulling library changes.`,
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	n, err := db.RebuildFromJSONL(config.PapersPath())
	if err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Indexed %d papers\n", n)
		return nil
	}
	return outputJSON(StatusResponse{Status: "rebuilt", Path: config.DBPath(), Count: n})
}
