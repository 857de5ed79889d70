package discovery

import (
	"testing"
)

func TestFilter_Match(t *testing.T) {
	paths := [][]string{
		{"Grammar", "Numbers", "division by zero is Infinity"},
		{"Grammar", "Numbers", "NaN is not equal to itself"},
		{"Grammar", "Strings", "strings are immutable"},
		{"Objects", "Prototype", "lookup delegates to the prototype"},
	}

	tests := []struct {
		name     string
		pattern  string
		expected int // Expected number of matches
	}{
		{
			name:     "empty pattern returns all",
			pattern:  "",
			expected: 4,
		},
		{
			name:     "simple contains match on example name",
			pattern:  "Infinity",
			expected: 1,
		},
		{
			name:     "contains match on group name",
			pattern:  "Numbers",
			expected: 2,
		},
		{
			name:     "match spans the separator",
			pattern:  "Grammar › Strings",
			expected: 1,
		},
		{
			name:     "wildcard pattern",
			pattern:  "Grammar*itself",
			expected: 1,
		},
		{
			name:     "wildcard pieces must appear in order",
			pattern:  "itself*Grammar",
			expected: 0,
		},
		{
			name:     "bare wildcard returns all",
			pattern:  "*",
			expected: 4,
		},
		{
			name:     "no matches",
			pattern:  "*NonExistent*",
			expected: 0,
		},
		{
			name:     "matching is case sensitive",
			pattern:  "grammar",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewFilter(tt.pattern)
			count := 0
			for _, p := range paths {
				if filter.Match(p) {
					count++
				}
			}
			if count != tt.expected {
				t.Errorf("expected %d matches, got %d", tt.expected, count)
			}
		})
	}
}

func TestFilter_NormalizesUnicode(t *testing.T) {
	// precomposed in the path, decomposed in the pattern
	filter := NewFilter("cafe\u0301")
	if !filter.Match([]string{"Strings", "caf\u00e9 has four characters"}) {
		t.Error("expected composed and decomposed forms to match")
	}
	if !NewFilter("").Empty() {
		t.Error("expected empty filter")
	}
}
