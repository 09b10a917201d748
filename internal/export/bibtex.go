// Package export converts papers to citation formats.
package export

import (
	"fmt"
	"strings"

	"github.com/paperbase/paperbase/internal/paper"
)

// ToBibTeX converts a paper to BibTeX format.
func ToBibTeX(p paper.Paper) string {
	entryType := determineEntryType(p)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, CiteKey(p)))

	if len(p.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(p.Authors)))
	}

	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(p.Title)))

	if p.Venue != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(p.Venue)))
	}

	if year := p.Year(); year > 0 {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", year))
	}

	if p.Volume != "" {
		b.WriteString(fmt.Sprintf("  volume = {%s},\n", p.Volume))
	}
	if p.Issue != "" {
		b.WriteString(fmt.Sprintf("  number = {%s},\n", p.Issue))
	}
	if p.Pages != "" {
		b.WriteString(fmt.Sprintf("  pages = {%s},\n", p.Pages))
	}

	if doi := p.NormalizedDOI(); doi != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", doi))
	}

	if id := p.ArxivID(); id != "" {
		b.WriteString(fmt.Sprintf("  eprint = {%s},\n", id))
		b.WriteString("  archivePrefix = {arXiv},\n")
	}

	if p.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", p.URL))
	}

	if p.Abstract != "" {
		b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(p.Abstract)))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple papers to BibTeX format.
func ToBibTeXList(papers []paper.Paper) string {
	var entries []string
	for _, p := range papers {
		entries = append(entries, ToBibTeX(p))
	}
	return strings.Join(entries, "\n")
}

// CiteKey derives a citation key: first author's last name plus year,
// falling back to a sanitized paper ID.
func CiteKey(p paper.Paper) string {
	if len(p.Authors) > 0 {
		parts := strings.Fields(p.Authors[0])
		if len(parts) > 0 {
			key := strings.ToLower(sanitizeKey(parts[len(parts)-1]))
			if year := p.Year(); year > 0 {
				return fmt.Sprintf("%s%d", key, year)
			}
			if key != "" {
				return key
			}
		}
	}
	return sanitizeKey(p.PaperID)
}

// sanitizeKey strips characters BibTeX keys cannot carry.
func sanitizeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '.' || r == ':':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// determineEntryType returns the BibTeX entry type for a paper.
func determineEntryType(p paper.Paper) string {
	venue := strings.ToLower(p.Venue)

	// Preprints
	if strings.Contains(venue, "arxiv") ||
		strings.Contains(venue, "biorxiv") ||
		strings.Contains(venue, "medrxiv") {
		return "article"
	}

	// Conference proceedings
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	return "article"
}

// formatAuthors formats "First Last" names in BibTeX style:
// "Last, First and Last, First".
func formatAuthors(authors []string) string {
	var formatted []string
	for _, a := range authors {
		parts := strings.Fields(a)
		if len(parts) > 1 {
			last := parts[len(parts)-1]
			first := strings.Join(parts[:len(parts)-1], " ")
			formatted = append(formatted, fmt.Sprintf("%s, %s", last, first))
		} else if a != "" {
			formatted = append(formatted, a)
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
