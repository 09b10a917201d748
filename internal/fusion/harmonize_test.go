package fusion

import (
	"testing"

	"github.com/paperbase/paperbase/internal/paper"
)

func TestHarmonize_Blocks(t *testing.T) {
	catalog := &paper.Paper{
		PaperID:        "ax-1",
		Source:         paper.SourceArxiv,
		Title:          "A Paper",
		Abstract:       "Abstract.",
		URL:            "https://arxiv.org/abs/ax-1",
		PDFURL:         "https://arxiv.org/pdf/ax-1",
		DOI:            "10.1/x",
		CitationsCount: 12,
	}
	extracted := map[string]any{
		"full_text": "body text",
		"sections":  []any{"1 Introduction"},
	}

	merged, prov, err := New().Merge(catalog, extracted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := Harmonize(merged, prov, "pdf")

	bib, ok := out["bibliographic"].(map[string]any)
	if !ok {
		t.Fatalf("missing bibliographic block: %v", out)
	}
	if bib["paper_id"] != "ax-1" || bib["doi"] != "10.1/x" || bib["citations_count"] != 12 {
		t.Errorf("bibliographic block wrong: %v", bib)
	}
	if _, leaked := bib["full_text"]; leaked {
		t.Errorf("content field leaked into bibliographic block")
	}

	urls, ok := out["urls"].(map[string]any)
	if !ok {
		t.Fatalf("missing urls block: %v", out)
	}
	if urls["main"] != "https://arxiv.org/abs/ax-1" || urls["pdf"] != "https://arxiv.org/pdf/ax-1" {
		t.Errorf("urls block wrong: %v", urls)
	}
	if _, ok := urls["html"]; ok {
		t.Errorf("absent html url should not appear: %v", urls)
	}

	content, ok := out["content"].(map[string]any)
	if !ok {
		t.Fatalf("missing content block: %v", out)
	}
	if content["format"] != "pdf" || content["full_text"] != "body text" {
		t.Errorf("content block wrong: %v", content)
	}

	info, ok := out["metadata_info"].(map[string]any)
	if !ok {
		t.Fatalf("missing metadata_info block: %v", out)
	}
	if info["conflicts_resolved"] != 0 {
		t.Errorf("conflicts_resolved = %v, want 0", info["conflicts_resolved"])
	}
	provFields, ok := info["provenance"].(map[string]string)
	if !ok {
		t.Fatalf("missing provenance in metadata_info: %v", info)
	}
	if provFields["full_text"] != FromExtracted || provFields["title"] != FromCatalog {
		t.Errorf("provenance wrong: %v", provFields)
	}
}

func TestHarmonize_NilProvenance(t *testing.T) {
	out := Harmonize(map[string]any{"title": "T"}, nil, "html")

	info, ok := out["metadata_info"].(map[string]any)
	if !ok {
		t.Fatalf("missing metadata_info block: %v", out)
	}
	if len(info) != 0 {
		t.Errorf("expected empty metadata_info without provenance, got %v", info)
	}
}
