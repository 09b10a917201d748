// Package extract pulls a partial metadata mapping, with per-field
// confidence scores, out of a publication document. Its output feeds the
// fusion merger as the "extracted" side.
package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Confidence assigned to each extracted field. Pattern-matched fields
// (doi) score high; positional guesses (title) score lower.
const (
	confidenceDOI        = 0.9
	confidenceFullText   = 0.9
	confidenceTitle      = 0.6
	confidenceAbstract   = 0.5
	confidenceSections   = 0.4
	confidenceReferences = 0.4
)

// Extractor turns PDF documents into flat field mappings.
type Extractor struct {
	maxPages int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxPages caps how many pages are read. Zero means all pages.
func WithMaxPages(n int) Option {
	return func(e *Extractor) {
		e.maxPages = n
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractPDF reads a PDF and returns the extracted field mapping plus a
// confidence mapping over the same field names.
func (e *Extractor) ExtractPDF(path string) (map[string]any, map[string]float64, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	maxPages := r.NumPage()
	if e.maxPages > 0 && e.maxPages < maxPages {
		maxPages = e.maxPages
	}

	var b strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	fields, confidence := FromText(b.String())
	return fields, confidence, nil
}

// FromText extracts the field mapping from raw document text. Split out
// from PDF reading so the heuristics are testable without fixtures.
func FromText(text string) (map[string]any, map[string]float64) {
	fields := make(map[string]any)
	confidence := make(map[string]float64)

	if doi := findDOI(text); doi != "" {
		fields["doi"] = doi
		confidence["doi"] = confidenceDOI
	}
	if title := findTitle(text); title != "" {
		fields["title"] = title
		confidence["title"] = confidenceTitle
	}
	if abstract := findAbstract(text); abstract != "" {
		fields["abstract"] = abstract
		confidence["abstract"] = confidenceAbstract
	}
	if sections := findSections(text); len(sections) > 0 {
		fields["sections"] = sections
		confidence["sections"] = confidenceSections
	}
	if refs := findReferences(text); len(refs) > 0 {
		fields["references"] = refs
		confidence["references"] = confidenceReferences
	}
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		fields["full_text"] = trimmed
		confidence["full_text"] = confidenceFullText
	}

	return fields, confidence
}
