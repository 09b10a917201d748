package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/paperbase/paperbase/internal/paper"
)

const (
	// S2BaseURL is the Semantic Scholar Graph API base URL.
	S2BaseURL = "https://api.semanticscholar.org/graph/v1"

	// Unauthenticated clients get roughly one request per second.
	s2RateLimit = 1.0

	// s2PaperFields are the fields requested for every search.
	s2PaperFields = "paperId,externalIds,title,abstract,authors,year,venue," +
		"publicationDate,url,openAccessPdf,citationCount,fieldsOfStudy"

	defaultS2Limit = 50
)

// S2Client searches the Semantic Scholar Graph API.
type S2Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

// S2Option configures an S2Client.
type S2Option func(*S2Client)

// WithS2APIKey sets the API key for authenticated requests.
func WithS2APIKey(key string) S2Option {
	return func(c *S2Client) {
		c.apiKey = key
	}
}

// WithS2BaseURL sets a custom base URL (for testing).
func WithS2BaseURL(u string) S2Option {
	return func(c *S2Client) {
		c.baseURL = u
	}
}

// WithS2HTTPClient sets a custom HTTP client.
func WithS2HTTPClient(hc *http.Client) S2Option {
	return func(c *S2Client) {
		c.httpClient = hc
	}
}

// NewS2Client creates a rate-limited Semantic Scholar client. The API
// key is read from S2_API_KEY when not set explicitly.
func NewS2Client(opts ...S2Option) *S2Client {
	c := &S2Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(s2RateLimit), 1),
		baseURL:    S2BaseURL,
	}
	if key := os.Getenv("S2_API_KEY"); key != "" {
		c.apiKey = key
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the catalog identifier.
func (c *S2Client) Name() paper.Source {
	return paper.SourceSemanticScholar
}

// Response shapes from the Graph API.
type s2SearchResponse struct {
	Total int       `json:"total"`
	Data  []s2Paper `json:"data"`
}

type s2Paper struct {
	PaperID       string        `json:"paperId"`
	ExternalIDs   s2ExternalIDs `json:"externalIds"`
	Title         string        `json:"title"`
	Abstract      string        `json:"abstract"`
	Authors       []s2Author    `json:"authors"`
	Year          int           `json:"year"`
	Venue         string        `json:"venue"`
	PubDate       string        `json:"publicationDate"` // YYYY-MM-DD
	URL           string        `json:"url"`
	OpenAccessPDF *s2OpenAccess `json:"openAccessPdf"`
	Citations     int           `json:"citationCount"`
	Fields        []string      `json:"fieldsOfStudy"`
}

type s2ExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

type s2Author struct {
	Name string `json:"name"`
}

type s2OpenAccess struct {
	URL string `json:"url"`
}

// Search queries the paper search endpoint and maps results.
func (c *S2Client) Search(ctx context.Context, query string, filters Filters) ([]paper.Paper, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("fields", s2PaperFields)
	params.Set("limit", fmt.Sprintf("%d", filters.Limit(defaultS2Limit)))
	if r := s2DateRange(filters); r != "" {
		params.Set("publicationDateOrYear", r)
	}
	if filters.Venue != "" {
		params.Set("venue", filters.Venue)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/paper/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
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
		return nil, &APIError{Source: "semantic_scholar", StatusCode: resp.StatusCode, Message: "search failed"}
	}

	var sr s2SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: parsing search results: %v", ErrInvalidResponse, err)
	}

	papers := make([]paper.Paper, 0, len(sr.Data))
	for _, sp := range sr.Data {
		papers = append(papers, mapS2Paper(sp))
	}
	return papers, nil
}

// s2DateRange renders filters as the API's "from:to" date range syntax.
func s2DateRange(filters Filters) string {
	if filters.From.IsZero() && filters.To.IsZero() {
		return ""
	}
	from, to := "", ""
	if !filters.From.IsZero() {
		from = filters.From.Format("2006-01-02")
	}
	if !filters.To.IsZero() {
		to = filters.To.Format("2006-01-02")
	}
	return from + ":" + to
}

// mapS2Paper converts a Graph API paper to a Paper record. Cross-catalog
// identifier hints land in Extra so deduplication can use them.
func mapS2Paper(sp s2Paper) paper.Paper {
	p := paper.Paper{
		PaperID:        sp.PaperID,
		Title:          sp.Title,
		Abstract:       sp.Abstract,
		Source:         paper.SourceSemanticScholar,
		URL:            sp.URL,
		DOI:            paper.NormalizeDOI(sp.ExternalIDs.DOI),
		Venue:          sp.Venue,
		CitationsCount: sp.Citations,
	}

	for _, a := range sp.Authors {
		if a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}
	for _, f := range sp.Fields {
		p.Categories = appendUnique(p.Categories, f)
	}
	if sp.OpenAccessPDF != nil {
		p.PDFURL = sp.OpenAccessPDF.URL
	}
	if sp.ExternalIDs.ArXiv != "" {
		p.SetExtra("arxiv_id", sp.ExternalIDs.ArXiv)
	}

	p.PublishedDate = parseS2Date(sp.PubDate, sp.Year)
	return p
}

// parseS2Date parses the YYYY-MM-DD publication date, falling back to a
// bare year, falling back to the zero time.
func parseS2Date(dateStr string, year int) time.Time {
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t
	}
	if year > 0 {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}
