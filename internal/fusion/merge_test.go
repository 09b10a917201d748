package fusion

import (
	"errors"
	"strings"
	"testing"

	"github.com/paperbase/paperbase/internal/paper"
)

func TestMerge_NilExtractedFailsFast(t *testing.T) {
	_, _, err := New().Merge(&paper.Paper{PaperID: "x"}, nil, nil)
	if !errors.Is(err, ErrNilExtracted) {
		t.Fatalf("expected ErrNilExtracted, got %v", err)
	}
}

func TestMerge_NilCatalogTakesEverythingFromExtracted(t *testing.T) {
	extracted := map[string]any{
		"title":    "Extracted Title",
		"abstract": "Extracted abstract.",
	}

	merged, prov, err := New().Merge(nil, extracted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if merged["title"] != "Extracted Title" {
		t.Errorf("title = %v", merged["title"])
	}
	if prov.Fields["title"] != FromExtracted || prov.Fields["abstract"] != FromExtracted {
		t.Errorf("provenance = %v", prov.Fields)
	}
	if prov.FieldsFromCatalog != 0 || prov.FieldsFromExtracted != 2 {
		t.Errorf("counters = %+v", prov)
	}
}

func TestMerge_PaperIDAlwaysCatalog(t *testing.T) {
	catalog := &paper.Paper{PaperID: "cat-1", Source: paper.SourceArxiv}
	extracted := map[string]any{"paper_id": "other-id"}

	merged, prov, err := New().Merge(catalog, extracted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if merged["paper_id"] != "cat-1" {
		t.Errorf("paper_id = %v, want catalog value", merged["paper_id"])
	}
	if prov.Fields["paper_id"] != FromCatalog {
		t.Errorf("provenance = %v", prov.Fields["paper_id"])
	}
	if prov.ConflictsResolved != 1 {
		t.Errorf("conflicts_resolved = %d, want 1", prov.ConflictsResolved)
	}
}

func TestMerge_AbstractLengthHeuristic(t *testing.T) {
	cases := []struct {
		name       string
		catLen     int
		extLen     int
		wantSource string
	}{
		// 80 > 50*1.2, extracted wins.
		{"extracted substantially longer", 50, 80, FromExtracted},
		// 110 < 100*1.2, catalog wins.
		{"extracted barely longer", 100, 110, FromCatalog},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			catalog := &paper.Paper{
				PaperID:  "p",
				Source:   paper.SourceArxiv,
				Abstract: strings.Repeat("c", tc.catLen),
			}
			extracted := map[string]any{"abstract": strings.Repeat("e", tc.extLen)}

			merged, prov, err := New().Merge(catalog, extracted, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if prov.Fields["abstract"] != tc.wantSource {
				t.Errorf("abstract provenance = %q, want %q", prov.Fields["abstract"], tc.wantSource)
			}
			want := tc.catLen
			if tc.wantSource == FromExtracted {
				want = tc.extLen
			}
			if got := merged["abstract"].(string); len(got) != want {
				t.Errorf("abstract length = %d, want %d", len(got), want)
			}
		})
	}
}

func TestMerge_TitleHeuristicNeedsConfidenceAndLength(t *testing.T) {
	catalog := &paper.Paper{PaperID: "p", Source: paper.SourceArxiv, Title: "Short Title"}
	extracted := map[string]any{"title": "A Considerably Longer Extracted Title"}

	// High confidence and longer text: extracted wins.
	_, prov, err := New().Merge(catalog, extracted, map[string]float64{"title": 0.9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.Fields["title"] != FromExtracted {
		t.Errorf("high-confidence longer title should win, got %q", prov.Fields["title"])
	}

	// Default confidence (0.5): catalog wins regardless of length.
	_, prov, err = New().Merge(catalog, extracted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.Fields["title"] != FromCatalog {
		t.Errorf("low-confidence title should lose, got %q", prov.Fields["title"])
	}
}

func TestMerge_AuthorsHeuristic(t *testing.T) {
	catalog := &paper.Paper{
		PaperID: "p",
		Source:  paper.SourceArxiv,
		Authors: []string{"Ada Lovelace"},
	}
	extracted := map[string]any{
		"authors": []any{"Ada Lovelace", "Charles Babbage", "George Boole"},
	}

	_, prov, err := New().Merge(catalog, extracted, map[string]float64{"authors": 0.8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.Fields["authors"] != FromExtracted {
		t.Errorf("longer confident author list should win, got %q", prov.Fields["authors"])
	}

	_, prov, err = New().Merge(catalog, extracted, map[string]float64{"authors": 0.6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.Fields["authors"] != FromCatalog {
		t.Errorf("low-confidence author list should lose, got %q", prov.Fields["authors"])
	}
}

func TestMerge_DOIHeuristic(t *testing.T) {
	catalog := &paper.Paper{PaperID: "p", Source: paper.SourceArxiv, DOI: "10.1/old"}

	// Valid-looking DOI with confidence above 0.6: extracted wins.
	_, prov, err := New().Merge(catalog, map[string]any{"doi": "10.99/new"}, map[string]float64{"doi": 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.Fields["doi"] != FromExtracted {
		t.Errorf("confident valid DOI should win, got %q", prov.Fields["doi"])
	}

	// Malformed DOI never wins, whatever the confidence.
	_, prov, err = New().Merge(catalog, map[string]any{"doi": "not-a-doi"}, map[string]float64{"doi": 0.95})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.Fields["doi"] != FromCatalog {
		t.Errorf("malformed DOI should lose, got %q", prov.Fields["doi"])
	}
}

func TestMerge_StructuralFieldsAlwaysIncluded(t *testing.T) {
	catalog := &paper.Paper{PaperID: "p", Source: paper.SourceArxiv, Title: "T"}
	extracted := map[string]any{
		"sections":   []any{map[string]any{"heading": "1 Introduction"}},
		"figures":    []any{"fig1"},
		"tables":     []any{"tab1"},
		"references": []any{"ref1", "ref2"},
		"equations":  []any{"e=mc^2"},
		"full_text":  "entire document text",
	}

	merged, prov, err := New().Merge(catalog, extracted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, f := range []string{"sections", "figures", "tables", "references", "equations", "full_text"} {
		if _, ok := merged[f]; !ok {
			t.Errorf("structural field %q missing from merge", f)
		}
		if prov.Fields[f] != FromExtracted {
			t.Errorf("structural field %q provenance = %q", f, prov.Fields[f])
		}
	}
}

func TestMerge_ConflictsResolvedCountsExactly(t *testing.T) {
	catalog := &paper.Paper{
		PaperID:  "p",           // conflicts with extracted
		Source:   paper.SourceArxiv,
		Title:    "Same Title",  // equal on both sides, no conflict
		Abstract: "catalog abs", // conflicts with extracted
		Venue:    "NeurIPS",     // only on catalog side
	}
	extracted := map[string]any{
		"paper_id":  "different",
		"title":     "Same Title",
		"abstract":  "a much longer extracted abstract text",
		"full_text": "body", // only on extracted side
	}

	_, prov, err := New().Merge(catalog, extracted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prov.ConflictsResolved != 2 {
		t.Errorf("conflicts_resolved = %d, want 2", prov.ConflictsResolved)
	}
}

func TestMerge_StatisticsDoNotLeakAcrossCalls(t *testing.T) {
	m := New()
	catalog := &paper.Paper{PaperID: "p", Source: paper.SourceArxiv}
	extracted := map[string]any{"paper_id": "other"}

	_, first, err := m.Merge(catalog, extracted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, second, err := m.Merge(catalog, extracted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ConflictsResolved != second.ConflictsResolved {
		t.Errorf("statistics leaked: first=%d second=%d", first.ConflictsResolved, second.ConflictsResolved)
	}
}

func TestMerge_GenericFallbackUsesConfidence(t *testing.T) {
	// keywords weight is 0.4; effective = 0.4 - (conf-0.5)*0.3.
	catalog := &paper.Paper{
		PaperID:  "p",
		Source:   paper.SourceArxiv,
		Keywords: []string{"from-catalog"},
	}
	extracted := map[string]any{"keywords": []any{"from-extraction"}}

	_, prov, err := New().Merge(catalog, extracted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.Fields["keywords"] != FromExtracted {
		t.Errorf("keywords with default confidence should come from extraction, got %q", prov.Fields["keywords"])
	}

	// Very low confidence pushes effective weight above 0.5.
	_, prov, err = New().Merge(catalog, extracted, map[string]float64{"keywords": 0.1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.Fields["keywords"] != FromCatalog {
		t.Errorf("keywords with low confidence should come from catalog, got %q", prov.Fields["keywords"])
	}
}

func TestMerge_EqualValuesAcrossRepresentations(t *testing.T) {
	catalog := &paper.Paper{
		PaperID:        "p",
		Source:         paper.SourceArxiv,
		CitationsCount: 42,
		Authors:        []string{"Ada Lovelace"},
	}
	extracted := map[string]any{
		"citations_count": float64(42), // JSON numbers decode as float64
		"authors":         []any{"Ada Lovelace"},
	}

	_, prov, err := New().Merge(catalog, extracted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.ConflictsResolved != 0 {
		t.Errorf("equivalent values counted as conflicts: %d", prov.ConflictsResolved)
	}
}
