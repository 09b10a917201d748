package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paperbase/paperbase/internal/extract"
	"github.com/paperbase/paperbase/internal/fusion"
	"github.com/paperbase/paperbase/internal/paper"
	"github.com/spf13/cobra"
)

var (
	mergePDF        string
	mergeExtracted  string
	mergeConfidence string
	mergeHarmonize  bool
	mergeFormat     string
	mergeMaxPages   int
)

func init() {
	mergeCmd.Flags().StringVar(&mergePDF, "pdf", "", "PDF to extract metadata from")
	mergeCmd.Flags().StringVar(&mergeExtracted, "extracted", "", "JSON file with a pre-extracted field mapping")
	mergeCmd.Flags().StringVar(&mergeConfidence, "confidence", "", "JSON file with per-field confidence scores")
	mergeCmd.Flags().BoolVar(&mergeHarmonize, "harmonize", false, "Project the merged record into the block layout")
	mergeCmd.Flags().StringVar(&mergeFormat, "format", "markdown", "Content format label for harmonized output")
	mergeCmd.Flags().IntVar(&mergeMaxPages, "max-pages", 0, "Read at most this many PDF pages (0 = all)")
	mergeCmd.MarkFlagsOneRequired("pdf", "extracted")
	mergeCmd.MarkFlagsMutuallyExclusive("pdf", "extracted")
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge <paper-id>",
	Short: "Fuse a library record with extracted metadata",
	Long: `Look up a record in the local library and fuse it field by field with
metadata extracted from a PDF (--pdf) or supplied as JSON (--extracted).
Catalog metadata wins for curated fields like identifiers; extracted
content wins for structural fields like sections and full text.

Examples:
  pb merge 2301.00001 --pdf paper.pdf
  pb merge 2301.00001 --extracted fields.json --confidence scores.json
  pb merge 10.1234/sparse --pdf paper.pdf --harmonize --format markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

// MergeResponse pairs the fused mapping with its provenance.
type MergeResponse struct {
	PaperID    string             `json:"paper_id"`
	Merged     map[string]any     `json:"merged"`
	Provenance *fusion.Provenance `json:"provenance"`
}

func runMerge(cmd *cobra.Command, args []string) error {
	rec := mustLookupPaper(args[0])

	extracted, confidence, err := loadExtracted()
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	merged, prov, err := fusion.New().Merge(rec, extracted, confidence)
	if err != nil {
		exitWithError(ExitDataError, "merging: %v", err)
	}

	if mergeHarmonize {
		return outputJSON(fusion.Harmonize(merged, prov, mergeFormat))
	}

	if humanOutput {
		fmt.Printf("Merged %s: %d fields from catalog, %d from extraction, %d conflicts resolved\n",
			rec.PaperID, prov.FieldsFromCatalog, prov.FieldsFromExtracted, prov.ConflictsResolved)
		return nil
	}
	return outputJSON(MergeResponse{PaperID: rec.PaperID, Merged: merged, Provenance: prov})
}

// loadExtracted produces the extracted side of the merge, either from a
// PDF or from pre-extracted JSON files.
func loadExtracted() (map[string]any, map[string]float64, error) {
	if mergePDF != "" {
		var opts []extract.Option
		if mergeMaxPages > 0 {
			opts = append(opts, extract.WithMaxPages(mergeMaxPages))
		}
		extracted, confidence, err := extract.New(opts...).ExtractPDF(mergePDF)
		if err != nil {
			return nil, nil, fmt.Errorf("extracting pdf: %w", err)
		}
		return extracted, confidence, nil
	}

	extracted := make(map[string]any)
	if err := readJSONFile(mergeExtracted, &extracted); err != nil {
		return nil, nil, fmt.Errorf("reading extracted fields: %w", err)
	}
	confidence := make(map[string]float64)
	if mergeConfidence != "" {
		if err := readJSONFile(mergeConfidence, &confidence); err != nil {
			return nil, nil, fmt.Errorf("reading confidence scores: %w", err)
		}
	}
	return extracted, confidence, nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// mustLookupPaper finds a library record by paper ID or DOI, exits when
// absent.
func mustLookupPaper(id string) *paper.Paper {
	db := mustOpenDatabase()
	defer db.Close()

	rec, err := db.GetByID(id)
	if err != nil {
		exitWithError(ExitError, "looking up %s: %v", id, err)
	}
	if rec == nil {
		rec, err = db.GetByDOI(id)
		if err != nil {
			exitWithError(ExitError, "looking up %s: %v", id, err)
		}
	}
	if rec == nil {
		exitWithError(ExitDataError, "paper not found: %s (run 'pb rebuild' if the library changed)", id)
	}
	return rec
}
