// Package expect holds the expectation predicates examples use to check the
// oracle. A predicate that does not hold returns a *Failure; the runner
// classifies that as a failed example rather than an errored one.
package expect

import "strings"

// Failure is the signal raised when an expectation does not hold.
type Failure struct {
	Predicate string // e.g. "equal", "have property 'length'"
	Negated   bool
	Expected  string // display form, empty for unary predicates
	Actual    string // display form
	Detail    string
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString("expected ")
	b.WriteString(f.Actual)
	if f.Negated {
		b.WriteString(" not")
	}
	b.WriteString(" to ")
	b.WriteString(f.Predicate)
	if f.Expected != "" {
		b.WriteString(" ")
		b.WriteString(f.Expected)
	}
	if f.Detail != "" {
		b.WriteString(" (")
		b.WriteString(f.Detail)
		b.WriteString(")")
	}
	return b.String()
}

// ErrorName is the name scripts see when a failure is thrown at them.
func (f *Failure) ErrorName() string {
	return "AssertionError"
}
