// Package pipeline orchestrates the reconciliation flow: fan out one
// query to every configured catalog, concatenate the results, and
// deduplicate them into one record per publication.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paperbase/paperbase/internal/catalog"
	"github.com/paperbase/paperbase/internal/dedup"
	"github.com/paperbase/paperbase/internal/extract"
	"github.com/paperbase/paperbase/internal/fusion"
	"github.com/paperbase/paperbase/internal/paper"
)

// ErrNoClients indicates the pipeline was built without catalog clients.
var ErrNoClients = errors.New("pipeline: no catalog clients configured")

// ErrAllSourcesFailed indicates every catalog search failed.
var ErrAllSourcesFailed = errors.New("pipeline: all catalog searches failed")

// Stats summarizes one pipeline run.
type Stats struct {
	PerSource    map[string]int    `json:"per_source"`
	SourceErrors map[string]string `json:"source_errors,omitempty"`
	TotalFetched int               `json:"total_fetched"`
	Unique       int               `json:"unique"`
}

// Result is the outcome of one reconciliation run.
type Result struct {
	RunID      string        `json:"run_id"`
	Query      string        `json:"query"`
	Papers     []paper.Paper `json:"papers"`
	Stats      Stats         `json:"stats"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Pipeline wires catalog clients to the deduplicator and merger.
type Pipeline struct {
	clients   []catalog.Client
	dedup     *dedup.Deduplicator
	merger    *fusion.Merger
	extractor *extract.Extractor
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDeduplicator overrides the default deduplicator.
func WithDeduplicator(d *dedup.Deduplicator) Option {
	return func(p *Pipeline) {
		p.dedup = d
	}
}

// WithExtractor overrides the default content extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(p *Pipeline) {
		p.extractor = e
	}
}

// New creates a Pipeline over the given catalog clients.
func New(clients []catalog.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		clients:   clients,
		dedup:     dedup.New(),
		merger:    fusion.New(),
		extractor: extract.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run searches every catalog concurrently, concatenates the results in
// client order, and deduplicates them. Individual catalog failures are
// recorded in the stats; Run fails only when no catalog succeeded.
func (p *Pipeline) Run(ctx context.Context, query string, filters catalog.Filters) (*Result, error) {
	if len(p.clients) == 0 {
		return nil, ErrNoClients
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Query:     query,
		StartedAt: time.Now().UTC(),
		Stats: Stats{
			PerSource:    make(map[string]int),
			SourceErrors: make(map[string]string),
		},
	}

	// Per-client result slots keep the concatenation order deterministic
	// regardless of which search returns first.
	fetched := make([][]paper.Paper, len(p.clients))
	errs := make([]error, len(p.clients))

	var wg sync.WaitGroup
	for i, client := range p.clients {
		wg.Add(1)
		go func(i int, client catalog.Client) {
			defer wg.Done()
			fetched[i], errs[i] = client.Search(ctx, query, filters)
		}(i, client)
	}
	wg.Wait()

	var all []paper.Paper
	failures := 0
	for i, client := range p.clients {
		name := string(client.Name())
		if errs[i] != nil {
			failures++
			result.Stats.SourceErrors[name] = errs[i].Error()
			continue
		}
		result.Stats.PerSource[name] = len(fetched[i])
		all = append(all, fetched[i]...)
	}
	if failures == len(p.clients) {
		return nil, ErrAllSourcesFailed
	}

	result.Stats.TotalFetched = len(all)
	result.Papers = p.dedup.Deduplicate(all)
	result.Stats.Unique = len(result.Papers)
	result.FinishedAt = time.Now().UTC()
	return result, nil
}

// Enrich extracts metadata from a document and fuses it with the given
// catalog record, returning the merged mapping and its provenance.
func (p *Pipeline) Enrich(rec *paper.Paper, pdfPath string) (map[string]any, *fusion.Provenance, error) {
	extracted, confidence, err := p.extractor.ExtractPDF(pdfPath)
	if err != nil {
		return nil, nil, err
	}
	return p.merger.Merge(rec, extracted, confidence)
}
