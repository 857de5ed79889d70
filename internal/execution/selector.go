package execution

import (
	"strings"

	"conform/internal/domain"
)

// Selector decides whether the example or group at path takes part in a
// run. Paths are group names followed, for examples, by the example name.
type Selector interface {
	Match(path []string) bool
}

// All selects everything.
type All struct{}

// Match always reports true.
func (All) Match([]string) bool { return true }

// KeySet selects examples whose joined path is in the set, e.g. the
// examples that did not pass in the previous run.
type KeySet map[string]struct{}

// Match reports whether the joined path is a member.
func (k KeySet) Match(path []string) bool {
	_, ok := k[strings.Join(path, domain.PathSeparator)]
	return ok
}

// AllOf selects what every one of its selectors selects.
type AllOf []Selector

// Match reports whether all selectors match.
func (a AllOf) Match(path []string) bool {
	for _, s := range a {
		if s != nil && !s.Match(path) {
			return false
		}
	}
	return true
}
