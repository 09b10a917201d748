package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/paperbase/paperbase/internal/paper"
)

const (
	// CrossrefBaseURL is the Crossref REST API base URL.
	CrossrefBaseURL = "https://api.crossref.org"

	// Polite-pool clients should stay well under 50 rps; 2 rps is plenty.
	crossrefRateLimit = 2.0

	defaultCrossrefLimit = 50
)

// jatsTag matches the JATS markup Crossref embeds in abstracts.
var jatsTag = regexp.MustCompile(`</?jats:[^>]+>`)

// CrossrefClient searches the Crossref works API.
type CrossrefClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// CrossrefOption configures a CrossrefClient.
type CrossrefOption func(*CrossrefClient)

// WithCrossrefBaseURL sets a custom base URL (for testing).
func WithCrossrefBaseURL(u string) CrossrefOption {
	return func(c *CrossrefClient) {
		c.baseURL = u
	}
}

// WithCrossrefMailto sets the contact address for Crossref's polite pool.
func WithCrossrefMailto(mailto string) CrossrefOption {
	return func(c *CrossrefClient) {
		c.mailto = mailto
	}
}

// WithCrossrefHTTPClient sets a custom HTTP client.
func WithCrossrefHTTPClient(hc *http.Client) CrossrefOption {
	return func(c *CrossrefClient) {
		c.httpClient = hc
	}
}

// NewCrossrefClient creates a rate-limited Crossref client.
func NewCrossrefClient(opts ...CrossrefOption) *CrossrefClient {
	c := &CrossrefClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(crossrefRateLimit), 1),
		baseURL:    CrossrefBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the catalog identifier.
func (c *CrossrefClient) Name() paper.Source {
	return paper.SourceCrossref
}

// Response shapes from the works endpoint.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefWork `json:"items"`
}

type crossrefWork struct {
	DOI            string            `json:"DOI"`
	Title          []string          `json:"title"`
	Author         []crossrefAuthor  `json:"author"`
	Abstract       string            `json:"abstract"`
	ContainerTitle []string          `json:"container-title"`
	Issued         crossrefDateParts `json:"issued"`
	URL            string            `json:"URL"`
	Volume         string            `json:"volume"`
	Issue          string            `json:"issue"`
	Page           string            `json:"page"`
	Subject        []string          `json:"subject"`
	CitedByCount   int               `json:"is-referenced-by-count"`
	Link           []crossrefLink    `json:"link"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDateParts struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefLink struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}

// Search queries the works endpoint and maps results.
func (c *CrossrefClient) Search(ctx context.Context, query string, filters Filters) ([]paper.Paper, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("rows", fmt.Sprintf("%d", filters.Limit(defaultCrossrefLimit)))
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}
	if f := crossrefDateFilter(filters); f != "" {
		params.Set("filter", f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/works?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Source: "crossref", StatusCode: resp.StatusCode, Message: "search failed"}
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("%w: parsing works: %v", ErrInvalidResponse, err)
	}

	papers := make([]paper.Paper, 0, len(cr.Message.Items))
	for _, work := range cr.Message.Items {
		papers = append(papers, mapCrossrefWork(work))
	}
	return papers, nil
}

func crossrefDateFilter(filters Filters) string {
	var parts []string
	if !filters.From.IsZero() {
		parts = append(parts, "from-pub-date:"+filters.From.Format("2006-01-02"))
	}
	if !filters.To.IsZero() {
		parts = append(parts, "until-pub-date:"+filters.To.Format("2006-01-02"))
	}
	return strings.Join(parts, ",")
}

// mapCrossrefWork converts a Crossref work to a Paper record.
func mapCrossrefWork(work crossrefWork) paper.Paper {
	p := paper.Paper{
		PaperID:        paper.NormalizeDOI(work.DOI),
		Source:         paper.SourceCrossref,
		URL:            work.URL,
		DOI:            paper.NormalizeDOI(work.DOI),
		Abstract:       stripJATS(work.Abstract),
		Volume:         work.Volume,
		Issue:          work.Issue,
		Pages:          work.Page,
		CitationsCount: work.CitedByCount,
	}

	if len(work.Title) > 0 {
		p.Title = work.Title[0]
	}
	if len(work.ContainerTitle) > 0 {
		p.Venue = work.ContainerTitle[0]
	}
	for _, a := range work.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	for _, s := range work.Subject {
		p.Keywords = appendUnique(p.Keywords, s)
	}
	for _, l := range work.Link {
		if l.ContentType == "application/pdf" {
			p.PDFURL = l.URL
			break
		}
	}

	p.PublishedDate = crossrefDate(work.Issued)
	return p
}

// crossrefDate converts issued date-parts ([year, month, day], partial
// allowed) to a time, or the zero time when absent.
func crossrefDate(d crossrefDateParts) time.Time {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return time.Time{}
	}
	parts := d.DateParts[0]
	year := parts[0]
	month, day := 1, 1
	if len(parts) > 1 && parts[1] >= 1 && parts[1] <= 12 {
		month = parts[1]
	}
	if len(parts) > 2 && parts[2] >= 1 && parts[2] <= 31 {
		day = parts[2]
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// stripJATS removes JATS markup from Crossref abstracts.
func stripJATS(s string) string {
	return strings.TrimSpace(jatsTag.ReplaceAllString(s, ""))
}
