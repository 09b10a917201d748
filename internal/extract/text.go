package extract

import (
	"regexp"
	"strings"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// sectionHeading matches numbered headings like "3 Results" or "3. Results".
var sectionHeading = regexp.MustCompile(`^\d+\.?\s+[A-Z][\w ,:-]{2,80}$`)

// Words that end the abstract block when they start a line.
var abstractTerminators = []string{"introduction", "1 introduction", "1. introduction", "keywords"}

const maxAbstractLen = 2000

// findDOI finds the first valid DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// findTitle returns the first substantial line, skipping header/footer
// noise. Best-effort: extraction confidence stays low for a reason.
func findTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// isHeaderLine checks if a line is likely a running header or footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") {
		return true
	}
	if strings.Contains(lower, "preprint") || strings.Contains(lower, "submitted to") {
		return true
	}
	return false
}

// findAbstract returns the text between an "Abstract" marker and the
// first terminator line, capped at maxAbstractLen characters.
func findAbstract(text string) string {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		l := strings.ToLower(strings.TrimSpace(line))
		if l == "abstract" || (strings.HasPrefix(l, "abstract") && len(l) < 20) {
			start = i + 1
			break
		}
	}
	if start == -1 {
		return ""
	}

	var b strings.Builder
	for _, line := range lines[start:] {
		l := strings.ToLower(strings.TrimSpace(line))
		if isTerminator(l) {
			break
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strings.TrimSpace(line))
		if b.Len() >= maxAbstractLen {
			break
		}
	}

	out := strings.TrimSpace(b.String())
	if len(out) > maxAbstractLen {
		out = out[:maxAbstractLen]
	}
	return out
}

func isTerminator(lower string) bool {
	for _, t := range abstractTerminators {
		if lower == t {
			return true
		}
	}
	return false
}

// findSections collects numbered section headings in document order.
func findSections(text string) []any {
	var sections []any
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if sectionHeading.MatchString(line) {
			sections = append(sections, map[string]any{"heading": line})
		}
	}
	return sections
}

// findReferences collects non-empty lines after the last "References"
// heading.
func findReferences(text string) []any {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		l := strings.ToLower(strings.TrimSpace(line))
		if l == "references" || l == "bibliography" {
			start = i + 1
		}
	}
	if start == -1 {
		return nil
	}

	var refs []any
	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		refs = append(refs, line)
	}
	return refs
}
