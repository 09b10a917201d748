package main

import (
	"github.com/paperbase/paperbase/internal/paper"
	"github.com/spf13/cobra"
)

var (
	listLimit  int
	listSearch string
)

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", DefaultListLimit, "Maximum records to return")
	listCmd.Flags().StringVar(&listSearch, "query", "", "Full-text query over title, abstract, and authors")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List library records",
	Long: `List records from the local library, optionally filtered by a
full-text query.

Examples:
  pb list
  pb list --query "attention" --limit 10`,
	RunE: runList,
}

var getCmd = &cobra.Command{
	Use:   "get <paper-id>",
	Short: "Show one library record",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runList(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	var papers []paper.Paper
	var err error
	if listSearch != "" {
		papers, err = db.Search(listSearch, listLimit)
	} else {
		papers, err = db.ListAll(listLimit)
	}
	if err != nil {
		exitWithError(ExitError, "listing library: %v", err)
	}

	if humanOutput {
		printPapersHuman(papers)
		return nil
	}
	return outputJSON(papers)
}

func runGet(cmd *cobra.Command, args []string) error {
	rec := mustLookupPaper(args[0])
	if humanOutput {
		printPapersHuman([]paper.Paper{*rec})
		return nil
	}
	return outputJSON(rec)
}
