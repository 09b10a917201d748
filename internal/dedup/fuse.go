package dedup

import (
	"strings"

	"github.com/paperbase/paperbase/internal/paper"
)

// Completeness weights for canonical selection.
const (
	completenessDOI        = 2
	completenessCitations  = 2
	completenessPDFURL     = 1
	completenessVenue      = 1
	completenessCategories = 1
	completenessKeywords   = 1
)

// completenessScore scores how much usable metadata a record carries.
func completenessScore(p *paper.Paper) int {
	score := 0
	if p.DOI != "" {
		score += completenessDOI
	}
	if p.PDFURL != "" {
		score += completenessPDFURL
	}
	if p.Venue != "" {
		score += completenessVenue
	}
	if p.CitationsCount > 0 {
		score += completenessCitations
	}
	if len(p.Categories) > 0 {
		score += completenessCategories
	}
	if len(p.Keywords) > 0 {
		score += completenessKeywords
	}
	return score
}

// betterCanonical reports whether a outranks b as the group's canonical
// record, comparing (source priority, completeness, recency) in order.
func betterCanonical(a, b *paper.Paper) bool {
	if pa, pb := a.Source.Priority(), b.Source.Priority(); pa != pb {
		return pa > pb
	}
	if ca, cb := completenessScore(a), completenessScore(b); ca != cb {
		return ca > cb
	}
	return a.Recency().After(b.Recency())
}

// fuseGroup collapses one duplicate group into a single record seeded
// from the canonical member. Singleton groups pass through untouched.
func fuseGroup(papers []paper.Paper, group []int) paper.Paper {
	if len(group) == 1 {
		return papers[group[0]]
	}

	canonical := group[0]
	for _, i := range group[1:] {
		if betterCanonical(&papers[i], &papers[canonical]) {
			canonical = i
		}
	}

	merged := papers[canonical].Clone()
	sources := []string{string(merged.Source)}

	for _, i := range group {
		if i == canonical {
			continue
		}
		mate := &papers[i]

		fillScalar(&merged.DOI, mate.DOI)
		fillScalar(&merged.PDFURL, mate.PDFURL)
		fillScalar(&merged.HTMLURL, mate.HTMLURL)
		fillScalar(&merged.Venue, mate.Venue)
		fillScalar(&merged.Volume, mate.Volume)
		fillScalar(&merged.Issue, mate.Issue)
		fillScalar(&merged.Pages, mate.Pages)

		merged.Categories = unionStrings(merged.Categories, mate.Categories)
		merged.Keywords = unionStrings(merged.Keywords, mate.Keywords)

		if mate.CitationsCount > merged.CitationsCount {
			merged.CitationsCount = mate.CitationsCount
		}

		// Traceability: remember where the absorbed records came from.
		if mate.PaperID != "" {
			merged.SetExtra(string(mate.Source)+"_id", mate.PaperID)
		}
		if mate.URL != "" {
			merged.SetExtra(string(mate.Source)+"_url", mate.URL)
		}

		if !containsString(sources, string(mate.Source)) {
			sources = append(sources, string(mate.Source))
		}
	}

	merged.SetExtra("all_sources", strings.Join(sources, ","))
	return merged
}

func fillScalar(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

// unionStrings appends values of b missing from a, preserving first-seen
// order with no duplicates.
func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			a = append(a, s)
		}
	}
	return a
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
