package main

import (
	"fmt"

	"github.com/paperbase/paperbase/internal/export"
	"github.com/paperbase/paperbase/internal/paper"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [paper-id...]",
	Short: "Export library records as BibTeX",
	Long: `Export records from the local library as BibTeX entries. With no
arguments, exports the whole library.

Examples:
  pb export                      # whole library
  pb export 2301.00001 s2-abc    # specific papers`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	var papers []paper.Paper
	if len(args) == 0 {
		all, err := db.ListAll(0)
		if err != nil {
			exitWithError(ExitError, "listing library: %v", err)
		}
		papers = all
	} else {
		for _, id := range args {
			rec, err := db.GetByID(id)
			if err != nil {
				exitWithError(ExitError, "looking up %s: %v", id, err)
			}
			if rec == nil {
				exitWithError(ExitDataError, "paper not found: %s", id)
			}
			papers = append(papers, *rec)
		}
	}

	// BibTeX is the payload either way, so ignore --human here.
	fmt.Print(export.ToBibTeXList(papers))
	return nil
}
