// Package dedup groups bibliographic records that describe the same
// publication and fuses each group into a single reconciled record.
package dedup

import (
	"sort"

	"github.com/paperbase/paperbase/internal/paper"
)

// DefaultSimilarityThreshold is the normalized-title similarity at or
// above which two records are considered the same publication.
const DefaultSimilarityThreshold = 0.85

// Deduplicator detects duplicate records across catalogs. It holds no
// per-call state and is safe for concurrent use on independent inputs.
type Deduplicator struct {
	threshold float64
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithThreshold overrides the title similarity threshold.
func WithThreshold(t float64) Option {
	return func(d *Deduplicator) {
		d.threshold = t
	}
}

// New creates a Deduplicator with the default similarity threshold.
func New(opts ...Option) *Deduplicator {
	d := &Deduplicator{threshold: DefaultSimilarityThreshold}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deduplicate groups the input records by identity and fuses each group
// into one output record. Records with missing titles, dates, or ids are
// matched on whatever they do have; nothing is rejected. The output has
// one record per group, ordered by where each group's first member
// appeared in the input.
func (d *Deduplicator) Deduplicate(papers []paper.Paper) []paper.Paper {
	if len(papers) == 0 {
		return nil
	}

	claimed := make([]bool, len(papers))
	var groups [][]int

	// Pass 1: exact keys. DOI grouping claims records before arXiv-id
	// grouping sees them. Keys iterate in sorted order so grouping does
	// not depend on map iteration order.
	groups = appendKeyGroups(groups, claimed, papers, func(p *paper.Paper) string {
		return p.NormalizedDOI()
	})
	groups = appendKeyGroups(groups, claimed, papers, func(p *paper.Paper) string {
		return p.ArxivID()
	})

	// Pass 2: greedy fuzzy grouping over unclaimed records. Each record
	// scans only later unclaimed records; claimed records are never
	// re-compared. Unmatched records end up as singleton groups.
	for i := range papers {
		if claimed[i] {
			continue
		}
		claimed[i] = true
		group := []int{i}
		for j := i + 1; j < len(papers); j++ {
			if claimed[j] {
				continue
			}
			if !yearsCompatible(&papers[i], &papers[j]) {
				continue
			}
			if TitleSimilarity(papers[i].Title, papers[j].Title) >= d.threshold {
				claimed[j] = true
				group = append(group, j)
			}
		}
		groups = append(groups, group)
	}

	// Emit groups in order of first appearance of their first member.
	sort.Slice(groups, func(a, b int) bool {
		return groups[a][0] < groups[b][0]
	})

	out := make([]paper.Paper, 0, len(groups))
	for _, g := range groups {
		out = append(out, fuseGroup(papers, g))
	}
	return out
}

// appendKeyGroups indexes unclaimed records by key and turns every bucket
// with two or more members into a group.
func appendKeyGroups(groups [][]int, claimed []bool, papers []paper.Paper, key func(*paper.Paper) string) [][]int {
	index := make(map[string][]int)
	for i := range papers {
		if claimed[i] {
			continue
		}
		if k := key(&papers[i]); k != "" {
			index[k] = append(index[k], i)
		}
	}

	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		members := index[k]
		if len(members) < 2 {
			continue
		}
		for _, i := range members {
			claimed[i] = true
		}
		groups = append(groups, members)
	}
	return groups
}

// yearsCompatible reports whether two records could share a publication
// year: equal years, or either year missing.
func yearsCompatible(a, b *paper.Paper) bool {
	ya, yb := a.Year(), b.Year()
	return ya == 0 || yb == 0 || ya == yb
}
