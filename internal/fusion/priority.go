package fusion

// Weight thresholds. At or above alwaysCatalogWeight the catalog value
// always wins; at or below alwaysExtractedWeight the extracted value
// always wins. Everything in between is adjudicated by heuristics and
// extraction confidence.
const (
	alwaysCatalogWeight   = 0.9
	alwaysExtractedWeight = 0.1
	defaultWeight         = 0.5
	defaultConfidence     = 0.5
)

// fieldWeights maps field name to catalog trust in [0,1]. 1.0 means the
// catalog record is authoritative; 0.0 means the extracted content is.
var fieldWeights = map[string]float64{
	// Identifiers and counters the catalog is authoritative for.
	"paper_id":        1.0,
	"source":          1.0,
	"url":             1.0,
	"pdf_url":         0.9,
	"html_url":        0.9,
	"citations_count": 1.0,
	"categories":      0.9,

	// Catalog-leaning bibliographic fields.
	"published_date": 0.8,
	"updated_date":   0.8,
	"venue":          0.7,
	"volume":         0.7,
	"issue":          0.7,
	"pages":          0.7,
	"doi":            0.7,
	"title":          0.7,
	"authors":        0.6,
	"abstract":       0.5,
	"keywords":       0.4,

	// Structural content only extraction can provide.
	"references": 0.1,
	"sections":   0.0,
	"figures":    0.0,
	"tables":     0.0,
	"equations":  0.0,
	"full_text":  0.0,
}

// structuralFields are force-included from the extracted mapping after
// the merge loop so structural content is never dropped.
var structuralFields = []string{
	"sections", "figures", "tables", "references", "equations", "full_text",
}

func fieldWeight(field string) float64 {
	if w, ok := fieldWeights[field]; ok {
		return w
	}
	return defaultWeight
}
