package fusion

import "strings"

// fieldRule is a field-specific tie-break evaluated before the generic
// weight/confidence rule. Rules are kept as an ordered list so each rule
// stays independently testable.
type fieldRule struct {
	field string
	// preferExtracted decides the winner when both sides have a value.
	preferExtracted func(catalog, extracted any, confidence float64) bool
}

func defaultRules() []fieldRule {
	return []fieldRule{
		{
			field: "title",
			preferExtracted: func(catalog, extracted any, confidence float64) bool {
				return confidence > 0.8 && textLen(extracted) > textLen(catalog)
			},
		},
		{
			field: "authors",
			preferExtracted: func(catalog, extracted any, confidence float64) bool {
				return listLen(extracted) > listLen(catalog) && confidence > 0.7
			},
		},
		{
			field: "abstract",
			preferExtracted: func(catalog, extracted any, _ float64) bool {
				return float64(textLen(extracted)) > float64(textLen(catalog))*1.2
			},
		},
		{
			field: "doi",
			preferExtracted: func(_, extracted any, confidence float64) bool {
				s, _ := extracted.(string)
				return strings.HasPrefix(s, "10.") && confidence > 0.6
			},
		},
	}
}

// textLen returns the character length of a string value, 0 otherwise.
func textLen(v any) int {
	if s, ok := v.(string); ok {
		return len(s)
	}
	return 0
}

// listLen returns the element count of a slice value. A bare non-empty
// string counts as one element.
func listLen(v any) int {
	switch t := v.(type) {
	case []string:
		return len(t)
	case []any:
		return len(t)
	case string:
		if t != "" {
			return 1
		}
	}
	return 0
}
