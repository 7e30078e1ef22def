package catalog

import (
	"strings"
	"unicode"
)

// NameFilter decides whether a geocoded name is a place worth offering as a route endpoint.
// house numbers and road codes (e.g. "15", "RN07") are not.
type NameFilter struct {
	reservedPrefixes []string
}

func NewNameFilter(reservedPrefixes []string) NameFilter {
	prefixes := make([]string, 0, len(reservedPrefixes))
	for _, p := range reservedPrefixes {
		// an empty prefix would reject every name
		if p == "" {
			continue
		}
		prefixes = append(prefixes, p)
	}
	return NameFilter{reservedPrefixes: prefixes}
}

func (f NameFilter) Admissible(name string) bool {
	if name == "" || isNumeric(name) {
		return false
	}
	for _, p := range f.reservedPrefixes {
		if strings.HasPrefix(name, p) {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
