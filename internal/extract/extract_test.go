package extract

import (
	"strings"
	"testing"
)

const sampleDocument = `Submitted to NeurIPS 2017

Attention Is All You Need: A New Architecture for Sequence Transduction

Ashish Vaswani, Noam Shazeer

Abstract
The dominant sequence transduction models are based on complex
recurrent or convolutional neural networks.
We propose a new simple network architecture, the Transformer.

1 Introduction
Recurrent neural networks have long been the state of the art.
doi:10.5555/3295222.3295349

2 Background
The goal of reducing sequential computation forms the foundation.

References
Vaswani et al. 2017. Attention is all you need.
Bahdanau et al. 2015. Neural machine translation.
`

func TestFromText(t *testing.T) {
	fields, confidence := FromText(sampleDocument)

	if got := fields["title"]; got != "Attention Is All You Need: A New Architecture for Sequence Transduction" {
		t.Errorf("title = %v", got)
	}
	if confidence["title"] != confidenceTitle {
		t.Errorf("title confidence = %v", confidence["title"])
	}

	abstract, _ := fields["abstract"].(string)
	if !strings.HasPrefix(abstract, "The dominant sequence transduction models") {
		t.Errorf("abstract = %q", abstract)
	}
	if strings.Contains(abstract, "Recurrent neural networks") {
		t.Errorf("abstract leaked past the introduction: %q", abstract)
	}

	if got := fields["doi"]; got != "10.5555/3295222.3295349" {
		t.Errorf("doi = %v", got)
	}
	if confidence["doi"] != confidenceDOI {
		t.Errorf("doi confidence = %v", confidence["doi"])
	}

	sections, _ := fields["sections"].([]any)
	if len(sections) != 2 {
		t.Fatalf("sections = %v", sections)
	}
	first, _ := sections[0].(map[string]any)
	if first["heading"] != "1 Introduction" {
		t.Errorf("first section = %v", first)
	}

	refs, _ := fields["references"].([]any)
	if len(refs) != 2 {
		t.Errorf("references = %v", refs)
	}

	if _, ok := fields["full_text"]; !ok {
		t.Errorf("full_text missing")
	}
}

func TestFromText_Empty(t *testing.T) {
	fields, confidence := FromText("")
	if len(fields) != 0 || len(confidence) != 0 {
		t.Errorf("expected empty mappings, got %v / %v", fields, confidence)
	}
}

func TestFindDOI(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"see https://doi.org/10.1038/nature14539 for details", "10.1038/nature14539"},
		{"DOI: 10.1145/3292500.3330701.", "10.1145/3292500.3330701"},
		{"no identifier here", ""},
		{"10.1/too-short-prefix", ""},
	}
	for _, tc := range cases {
		if got := findDOI(tc.in); got != tc.want {
			t.Errorf("findDOI(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFindAbstract_MarkerForms(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare marker",
			text: "Abstract\nWe study things.\n1 Introduction\nBody.",
			want: "We study things.",
		},
		{
			name: "marker with suffix",
			text: "Abstract.\nWe study things.\nKeywords\nstuff",
			want: "We study things.",
		},
		{
			name: "long abstract-prefixed line is not a marker",
			text: "Abstracting services index this journal.\nWe study things.\n",
			want: "",
		},
	}
	for _, tc := range cases {
		if got := findAbstract(tc.text); got != tc.want {
			t.Errorf("%s: findAbstract = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFindTitle_SkipsHeaderNoise(t *testing.T) {
	text := "Journal of Machine Learning, Volume 5 Issue 2\nCopyright 2020 by the authors\nA Study of Gradient Descent Convergence Rates\n"
	if got := findTitle(text); got != "A Study of Gradient Descent Convergence Rates" {
		t.Errorf("title = %q", got)
	}
}
