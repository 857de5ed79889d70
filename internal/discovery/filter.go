package discovery

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"conform/internal/domain"
)

// Filter selects examples by their full path, the group names and the
// example name joined with domain.PathSeparator.
type Filter struct {
	pattern string
	parts   []string
}

// NewFilter creates a new Filter. The pattern is a substring; "*" matches
// any run of characters. An empty pattern selects everything.
func NewFilter(pattern string) *Filter {
	pattern = norm.NFC.String(pattern)
	f := &Filter{pattern: pattern}
	if strings.Contains(pattern, "*") {
		for _, part := range strings.Split(pattern, "*") {
			if part != "" {
				f.parts = append(f.parts, part)
			}
		}
	}
	return f
}

// Empty reports whether the filter selects everything.
func (f *Filter) Empty() bool {
	return f.pattern == ""
}

// Match reports whether the path is selected.
func (f *Filter) Match(path []string) bool {
	if f.Empty() {
		return true
	}
	full := norm.NFC.String(strings.Join(path, domain.PathSeparator))

	// If no wildcards, do a simple contains check
	if !strings.Contains(f.pattern, "*") {
		return strings.Contains(full, f.pattern)
	}

	// A bare "*" selects everything; otherwise the pieces must appear in order
	rest := full
	for _, part := range f.parts {
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	return true
}

// String returns the pattern as given.
func (f *Filter) String() string {
	return f.pattern
}
