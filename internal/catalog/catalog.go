// Package catalog provides search clients for bibliographic catalogs.
// Each client translates a plain query plus filters into the catalog's
// own query language and maps results onto the shared Paper record.
package catalog

import (
	"context"
	"time"

	"github.com/paperbase/paperbase/internal/paper"
)

// Filters narrows a catalog search. Zero values mean "no constraint".
type Filters struct {
	From       time.Time // earliest publication date
	To         time.Time // latest publication date
	Venue      string
	MaxResults int
}

// Limit returns the effective result cap for a search.
func (f Filters) Limit(fallback int) int {
	if f.MaxResults > 0 {
		return f.MaxResults
	}
	return fallback
}

// Client searches one catalog. Implementations are rate-limited and safe
// for concurrent use.
type Client interface {
	// Name identifies the catalog the client talks to.
	Name() paper.Source

	// Search runs a keyword query and maps the results to Paper records.
	Search(ctx context.Context, query string, filters Filters) ([]paper.Paper, error)
}
