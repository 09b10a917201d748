// Package fusion merges a trusted catalog record with a noisy, richer
// extracted-content mapping for the same publication, deciding per field
// which source to keep and recording the provenance of every decision.
package fusion

import (
	"errors"
	"reflect"
	"sort"
	"time"

	"github.com/paperbase/paperbase/internal/paper"
)

// Provenance sources.
const (
	FromCatalog   = "catalog"
	FromExtracted = "extracted"
)

// ErrNilExtracted indicates the caller passed a nil extracted mapping.
// This is a programming error, not a recoverable runtime condition.
var ErrNilExtracted = errors.New("fusion: extracted mapping must not be nil")

// Provenance records which source won each field, plus the fusion
// statistics for one merge call. ConflictsResolved counts fields that
// were present and unequal on both sides, regardless of the winner.
type Provenance struct {
	Fields              map[string]string `json:"fields"`
	FieldsFromCatalog   int               `json:"fields_from_catalog"`
	FieldsFromExtracted int               `json:"fields_from_extracted"`
	ConflictsResolved   int               `json:"conflicts_resolved"`
}

// Merger fuses catalog records with extracted metadata. It carries no
// per-call state: statistics are fresh values returned with each result,
// so a Merger is safe for concurrent use.
type Merger struct {
	rules []fieldRule
}

// New creates a Merger with the default field-priority table and
// heuristic rule set.
func New() *Merger {
	return &Merger{rules: defaultRules()}
}

// Merge fuses one catalog record with one extracted mapping. A nil
// catalog is legal (everything resolves to extracted); a nil extracted
// mapping is a caller error. Field names are visited in sorted order so
// results and statistics are deterministic.
func (m *Merger) Merge(catalog *paper.Paper, extracted map[string]any, confidence map[string]float64) (map[string]any, *Provenance, error) {
	if extracted == nil {
		return nil, nil, ErrNilExtracted
	}

	prov := &Provenance{Fields: make(map[string]string)}

	var catMap map[string]any
	if catalog != nil {
		catMap = catalogFields(catalog)
	}

	merged := make(map[string]any, len(catMap)+len(extracted))
	for _, field := range unionKeys(catMap, extracted) {
		catVal, inCat := catMap[field]
		extVal, inExt := presentValue(extracted, field)

		switch {
		case inCat && !inExt:
			take(merged, prov, field, catVal, FromCatalog)
		case inExt && !inCat:
			take(merged, prov, field, extVal, FromExtracted)
		case inCat && inExt:
			if !valuesEqual(catVal, extVal) {
				prov.ConflictsResolved++
			}
			if m.preferExtracted(field, catVal, extVal, confidenceFor(confidence, field)) {
				take(merged, prov, field, extVal, FromExtracted)
			} else {
				take(merged, prov, field, catVal, FromCatalog)
			}
		}
	}

	// Structural content is never dropped, even when the catalog side
	// carried a same-named null or absent key.
	for _, field := range structuralFields {
		if v, ok := extracted[field]; ok && v != nil {
			if _, done := merged[field]; !done {
				take(merged, prov, field, v, FromExtracted)
			}
		}
	}

	return merged, prov, nil
}

// preferExtracted decides the winner for a field present on both sides:
// hard weight bands first, then the ordered heuristic rules, then the
// generic confidence-adjusted threshold.
func (m *Merger) preferExtracted(field string, catVal, extVal any, confidence float64) bool {
	weight := fieldWeight(field)
	if weight >= alwaysCatalogWeight {
		return false
	}
	if weight <= alwaysExtractedWeight {
		return true
	}

	for _, rule := range m.rules {
		if rule.field == field {
			return rule.preferExtracted(catVal, extVal, confidence)
		}
	}

	effective := weight - (confidence-0.5)*0.3
	return effective <= 0.5
}

func take(merged map[string]any, prov *Provenance, field string, value any, source string) {
	merged[field] = value
	prov.Fields[field] = source
	if source == FromCatalog {
		prov.FieldsFromCatalog++
	} else {
		prov.FieldsFromExtracted++
	}
}

func confidenceFor(confidence map[string]float64, field string) float64 {
	if c, ok := confidence[field]; ok {
		return c
	}
	return defaultConfidence
}

// presentValue treats a nil value as an absent key.
func presentValue(m map[string]any, field string) (any, bool) {
	v, ok := m[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func unionKeys(a map[string]any, b map[string]any) []string {
	keys := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
		keys = append(keys, k)
	}
	for k := range b {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// catalogFields flattens a record into the merge field space. Absent
// optional fields are omitted so they read as "missing" during fusion.
func catalogFields(p *paper.Paper) map[string]any {
	fields := map[string]any{
		"citations_count": p.CitationsCount,
	}
	putString(fields, "paper_id", p.PaperID)
	putString(fields, "title", p.Title)
	putString(fields, "abstract", p.Abstract)
	putString(fields, "source", string(p.Source))
	putString(fields, "url", p.URL)
	putString(fields, "pdf_url", p.PDFURL)
	putString(fields, "html_url", p.HTMLURL)
	putString(fields, "doi", p.DOI)
	putString(fields, "venue", p.Venue)
	putString(fields, "volume", p.Volume)
	putString(fields, "issue", p.Issue)
	putString(fields, "pages", p.Pages)
	if len(p.Authors) > 0 {
		fields["authors"] = p.Authors
	}
	if len(p.Categories) > 0 {
		fields["categories"] = p.Categories
	}
	if len(p.Keywords) > 0 {
		fields["keywords"] = p.Keywords
	}
	if len(p.References) > 0 {
		fields["references"] = p.References
	}
	if !p.PublishedDate.IsZero() {
		fields["published_date"] = p.PublishedDate
	}
	if !p.UpdatedDate.IsZero() {
		fields["updated_date"] = p.UpdatedDate
	}
	return fields
}

func putString(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

// valuesEqual compares values across representations: JSON decoding
// yields float64 and []any where catalog fields carry int and []string.
func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(canonical(a), canonical(b))
}

func canonical(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case float64:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = any(s)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonical(e)
		}
		return out
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
