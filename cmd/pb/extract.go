package main

import (
	"fmt"
	"sort"

	"github.com/paperbase/paperbase/internal/extract"
	"github.com/spf13/cobra"
)

var extractMaxPages int

func init() {
	extractCmd.Flags().IntVar(&extractMaxPages, "max-pages", 0, "Read at most this many PDF pages (0 = all)")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Extract metadata from a PDF",
	Long: `Extract a partial metadata mapping (title, abstract, DOI, sections,
references) from a PDF, with a confidence score per field.

Examples:
  pb extract paper.pdf
  pb extract paper.pdf --max-pages 2`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// ExtractResponse pairs extracted fields with their confidence scores.
type ExtractResponse struct {
	Fields     map[string]any     `json:"fields"`
	Confidence map[string]float64 `json:"confidence"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	var opts []extract.Option
	if extractMaxPages > 0 {
		opts = append(opts, extract.WithMaxPages(extractMaxPages))
	}

	fields, confidence, err := extract.New(opts...).ExtractPDF(args[0])
	if err != nil {
		exitWithError(ExitDataError, "extracting pdf: %v", err)
	}

	if humanOutput {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if name == "full_text" {
				continue
			}
			fmt.Printf("%-12s [%.1f] %v\n", name, confidence[name], fields[name])
		}
		return nil
	}
	return outputJSON(ExtractResponse{Fields: fields, Confidence: confidence})
}
