package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/paperbase/paperbase/internal/paper"
)

// DefaultListLimit is the default limit for search/list commands.
const DefaultListLimit = 50

// ListTitleMaxLen caps titles in list output.
const ListTitleMaxLen = 70

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// printPapersHuman prints papers in a short human-readable listing.
func printPapersHuman(papers []paper.Paper) {
	for i, p := range papers {
		fmt.Printf("%d. [%s] %s\n", i+1, p.Source, p.PaperID)
		fmt.Printf("   %s\n", truncateString(p.Title, ListTitleMaxLen))
		line := formatAuthorsShort(p.Authors, 3)
		if year := p.Year(); year > 0 {
			line = fmt.Sprintf("%s (%d)", line, year)
		}
		if line != "" {
			fmt.Printf("   %s\n", line)
		}
		fmt.Println()
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// formatAuthorsShort joins up to maxCount author names, then "et al.".
func formatAuthorsShort(authors []string, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}

	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, a)
	}
	return strings.Join(names, ", ")
}
