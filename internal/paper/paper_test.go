package paper

import (
	"testing"
	"time"
)

func TestNormalizeDOI(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10.1234/ABC", "10.1234/abc"},
		{"doi:10.1234/abc", "10.1234/abc"},
		{"  DOI:10.1234/AbC  ", "10.1234/abc"},
		{"https://doi.org/10.1234/abc", "10.1234/abc"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDOI(tc.in); got != tc.want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestArxivID(t *testing.T) {
	own := Paper{PaperID: "1706.03762", Source: SourceArxiv}
	if got := own.ArxivID(); got != "1706.03762" {
		t.Errorf("arxiv record id = %q", got)
	}

	hint := Paper{
		PaperID: "s2-abc",
		Source:  SourceSemanticScholar,
		Extra:   map[string]string{"arxiv_id": "1706.03762"},
	}
	if got := hint.ArxivID(); got != "1706.03762" {
		t.Errorf("cross-reference id = %q", got)
	}

	none := Paper{PaperID: "cr-1", Source: SourceCrossref}
	if got := none.ArxivID(); got != "" {
		t.Errorf("expected empty arxiv id, got %q", got)
	}
}

func TestRecencyFallback(t *testing.T) {
	pub := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	upd := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	p := Paper{PublishedDate: pub, UpdatedDate: upd}
	if !p.Recency().Equal(upd) {
		t.Errorf("recency should prefer updated date")
	}

	p = Paper{PublishedDate: pub}
	if !p.Recency().Equal(pub) {
		t.Errorf("recency should fall back to published date")
	}

	p = Paper{}
	if !p.Recency().IsZero() {
		t.Errorf("recency should fall back to zero time")
	}
}

func TestSourcePriorityOrdering(t *testing.T) {
	if SourceSemanticScholar.Priority() <= SourceArxiv.Priority() {
		t.Errorf("curated index should outrank preprint server")
	}
	if SourceArxiv.Priority() <= SourceCrossref.Priority() {
		t.Errorf("preprint server should outrank generic aggregator")
	}
	if Source("unknown").Priority() != 0 {
		t.Errorf("unknown source should rank lowest")
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := Paper{
		Categories: []string{"cs.LG"},
		Extra:      map[string]string{"k": "v"},
	}
	c := p.Clone()
	c.Categories[0] = "changed"
	c.Extra["k"] = "changed"

	if p.Categories[0] != "cs.LG" || p.Extra["k"] != "v" {
		t.Errorf("clone shares storage with original: %+v", p)
	}
}
