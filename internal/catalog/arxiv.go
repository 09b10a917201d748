package catalog

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/paperbase/paperbase/internal/paper"
)

const (
	// ArxivBaseURL is the arXiv Atom API endpoint.
	ArxivBaseURL = "http://export.arxiv.org/api/query"

	// arXiv asks for no more than one request every three seconds.
	arxivRateInterval = 3 * time.Second

	defaultArxivLimit = 50
)

// versionSuffix matches the trailing "vN" on arXiv identifiers.
var versionSuffix = regexp.MustCompile(`v\d+$`)

// ArxivClient searches the arXiv Atom API.
type ArxivClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// ArxivOption configures an ArxivClient.
type ArxivOption func(*ArxivClient)

// WithArxivBaseURL sets a custom base URL (for testing).
func WithArxivBaseURL(u string) ArxivOption {
	return func(c *ArxivClient) {
		c.baseURL = u
	}
}

// WithArxivHTTPClient sets a custom HTTP client.
func WithArxivHTTPClient(hc *http.Client) ArxivOption {
	return func(c *ArxivClient) {
		c.httpClient = hc
	}
}

// NewArxivClient creates a rate-limited arXiv search client.
func NewArxivClient(opts ...ArxivOption) *ArxivClient {
	c := &ArxivClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(arxivRateInterval), 1),
		baseURL:    ArxivBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the catalog identifier.
func (c *ArxivClient) Name() paper.Source {
	return paper.SourceArxiv
}

// Atom feed shapes returned by the arXiv API.
type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string           `xml:"id"`
	Title      string           `xml:"title"`
	Summary    string           `xml:"summary"`
	Published  string           `xml:"published"`
	Updated    string           `xml:"updated"`
	DOI        string           `xml:"doi"`
	JournalRef string           `xml:"journal_ref"`
	Authors    []arxivAuthor    `xml:"author"`
	Categories []arxivCategory  `xml:"category"`
	Links      []arxivAtomLink  `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type arxivAtomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// Search queries arXiv and maps the Atom entries to Paper records.
func (c *ArxivClient) Search(ctx context.Context, query string, filters Filters) ([]paper.Paper, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("search_query", arxivQuery(query, filters))
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", filters.Limit(defaultArxivLimit)))
	params.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
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
		return nil, &APIError{Source: "arxiv", StatusCode: resp.StatusCode, Message: "search failed"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: parsing feed: %v", ErrInvalidResponse, err)
	}

	papers := make([]paper.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		papers = append(papers, mapArxivEntry(entry))
	}
	return papers, nil
}

// arxivQuery builds the arXiv query expression from query and filters.
func arxivQuery(query string, filters Filters) string {
	expr := "all:" + query
	if !filters.From.IsZero() || !filters.To.IsZero() {
		from := "190001010000"
		to := "209912312359"
		if !filters.From.IsZero() {
			from = filters.From.Format("200601021504")
		}
		if !filters.To.IsZero() {
			to = filters.To.Format("200601021504")
		}
		expr += fmt.Sprintf(" AND submittedDate:[%s TO %s]", from, to)
	}
	return expr
}

// mapArxivEntry converts one Atom entry to a Paper record.
func mapArxivEntry(entry arxivEntry) paper.Paper {
	p := paper.Paper{
		PaperID:  arxivIDFromURL(entry.ID),
		Title:    collapseWhitespace(entry.Title),
		Abstract: collapseWhitespace(entry.Summary),
		Source:   paper.SourceArxiv,
		URL:      entry.ID,
		DOI:      paper.NormalizeDOI(entry.DOI),
		Venue:    entry.JournalRef,
	}

	for _, a := range entry.Authors {
		if a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}
	for _, c := range entry.Categories {
		if c.Term != "" {
			p.Categories = appendUnique(p.Categories, c.Term)
		}
	}
	for _, l := range entry.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			p.PDFURL = l.Href
		}
	}

	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		p.PublishedDate = t
	}
	if t, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
		p.UpdatedDate = t
	}

	return p
}

// arxivIDFromURL extracts the bare identifier from an entry URL like
// http://arxiv.org/abs/1706.03762v5, dropping the version suffix.
func arxivIDFromURL(u string) string {
	id := u
	if idx := strings.Index(u, "/abs/"); idx != -1 {
		id = u[idx+len("/abs/"):]
	}
	return versionSuffix.ReplaceAllString(id, "")
}

// collapseWhitespace flattens the newline-wrapped text arXiv returns.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
