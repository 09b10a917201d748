// Package paper defines the core domain types for bibliographic records.
package paper

import (
	"strings"
	"time"
)

// Source identifies the catalog a record was fetched from.
type Source string

// Known catalog sources.
const (
	SourceArxiv           Source = "arxiv"
	SourceSemanticScholar Source = "semantic_scholar"
	SourceCrossref        Source = "crossref"
	SourceWebSearch       Source = "web_search"
)

// sourcePriority ranks catalogs by curation quality. Higher is better:
// a curated index beats a preprint server beats a generic aggregator.
var sourcePriority = map[Source]int{
	SourceSemanticScholar: 4,
	SourceArxiv:           3,
	SourceCrossref:        2,
	SourceWebSearch:       1,
}

// Priority returns the curation rank of the source. Unknown sources rank 0.
func (s Source) Priority() int {
	return sourcePriority[s]
}

// Paper represents a bibliographic record from a single catalog.
// PaperID is meaningful only paired with Source: two records with equal
// PaperID but different Source are distinct publications unless matched.
type Paper struct {
	PaperID  string   `json:"paper_id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Source   Source   `json:"source"`

	PublishedDate time.Time `json:"published_date,omitzero"`
	UpdatedDate   time.Time `json:"updated_date,omitzero"`

	URL     string `json:"url,omitempty"`
	PDFURL  string `json:"pdf_url,omitempty"`
	HTMLURL string `json:"html_url,omitempty"`

	DOI    string `json:"doi,omitempty"`
	Venue  string `json:"venue,omitempty"`
	Volume string `json:"volume,omitempty"`
	Issue  string `json:"issue,omitempty"`
	Pages  string `json:"pages,omitempty"`

	Categories []string `json:"categories,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`

	CitationsCount int      `json:"citations_count"`
	References     []string `json:"references,omitempty"`

	// Extra holds source-specific attributes, e.g. cross-catalog id hints
	// like "arxiv_id", and traceability keys written during fusion.
	Extra map[string]string `json:"extra,omitempty"`
}

// NormalizeDOI lower-cases a DOI, trims whitespace, and strips the "doi:"
// prefix and common resolver URL prefixes. Returns "" for an absent DOI.
func NormalizeDOI(doi string) string {
	d := strings.ToLower(strings.TrimSpace(doi))
	d = strings.TrimPrefix(d, "doi:")
	d = strings.TrimPrefix(d, "https://doi.org/")
	d = strings.TrimPrefix(d, "http://doi.org/")
	return strings.TrimSpace(d)
}

// NormalizedDOI returns the record's DOI in canonical form.
func (p *Paper) NormalizedDOI() string {
	return NormalizeDOI(p.DOI)
}

// ArxivID returns the arXiv identifier for the record: its own id when the
// record came from arXiv, otherwise a cross-reference hint from Extra.
func (p *Paper) ArxivID() string {
	if p.Source == SourceArxiv {
		return p.PaperID
	}
	return p.Extra["arxiv_id"]
}

// Year returns the publication year, or 0 when the date is absent.
func (p *Paper) Year() int {
	if p.PublishedDate.IsZero() {
		return 0
	}
	return p.PublishedDate.Year()
}

// Recency returns the best-known freshness timestamp: updated date,
// falling back to published date, falling back to the zero time.
func (p *Paper) Recency() time.Time {
	if !p.UpdatedDate.IsZero() {
		return p.UpdatedDate
	}
	return p.PublishedDate
}

// SetExtra stores a key/value pair, allocating the map on first use.
func (p *Paper) SetExtra(key, value string) {
	if p.Extra == nil {
		p.Extra = make(map[string]string)
	}
	p.Extra[key] = value
}

// Clone returns a deep copy of the record. Fusion mutates slices and the
// extra map, so group members must not share backing storage with input.
func (p Paper) Clone() Paper {
	out := p
	out.Authors = cloneStrings(p.Authors)
	out.Categories = cloneStrings(p.Categories)
	out.Keywords = cloneStrings(p.Keywords)
	out.References = cloneStrings(p.References)
	if p.Extra != nil {
		out.Extra = make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
