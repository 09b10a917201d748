package fusion

// Field groupings for the harmonized output shape.
var (
	bibliographicFields = []string{
		"paper_id", "doi", "source", "title", "authors", "abstract",
		"published_date", "updated_date", "venue", "volume", "issue",
		"pages", "categories", "keywords", "citations_count",
	}

	urlFields = []struct {
		from string
		to   string
	}{
		{"url", "main"},
		{"pdf_url", "pdf"},
		{"html_url", "html"},
	}

	contentFields = []string{
		"full_text", "sections", "figures", "tables", "references", "equations",
	}
)

// Harmonize regroups a flat merged mapping into fixed bibliographic,
// urls, and content blocks, plus a metadata_info block carrying the
// merge provenance and statistics. It is a stateless projection with no
// decision logic.
func Harmonize(merged map[string]any, prov *Provenance, contentFormat string) map[string]any {
	bibliographic := make(map[string]any)
	for _, f := range bibliographicFields {
		if v, ok := merged[f]; ok {
			bibliographic[f] = v
		}
	}

	urls := make(map[string]any)
	for _, m := range urlFields {
		if v, ok := merged[m.from]; ok {
			urls[m.to] = v
		}
	}

	content := map[string]any{"format": contentFormat}
	for _, f := range contentFields {
		if v, ok := merged[f]; ok {
			content[f] = v
		}
	}

	info := map[string]any{}
	if prov != nil {
		info["provenance"] = prov.Fields
		info["fields_from_catalog"] = prov.FieldsFromCatalog
		info["fields_from_extracted"] = prov.FieldsFromExtracted
		info["conflicts_resolved"] = prov.ConflictsResolved
	}

	return map[string]any{
		"bibliographic": bibliographic,
		"urls":          urls,
		"content":       content,
		"metadata_info": info,
	}
}
