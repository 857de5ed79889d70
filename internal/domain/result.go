package domain

import (
	"strings"
	"time"
)

// Outcome classifies how an example finished.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeErrored Outcome = "errored"
)

// PathSeparator joins group and example names into a display path.
const PathSeparator = " › "

// Result is the report entry for one executed example.
type Result struct {
	Path     []string      `json:"path"` // enclosing group names, outermost first
	Name     string        `json:"name"`
	Source   string        `json:"source,omitempty"`
	Outcome  Outcome       `json:"outcome"`
	Message  string        `json:"message,omitempty"`
	Expected string        `json:"expected,omitempty"`
	Actual   string        `json:"actual,omitempty"`
	Stack    []string      `json:"stack,omitempty"`
	Duration time.Duration `json:"-"`
}

// FullPath returns the group path followed by the example name.
func (r Result) FullPath() []string {
	full := make([]string, 0, len(r.Path)+1)
	full = append(full, r.Path...)
	return append(full, r.Name)
}

// Key returns the display key used to match results across runs.
func (r Result) Key() string {
	return strings.Join(r.FullPath(), PathSeparator)
}

// Counts tallies outcomes.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// Total returns the number of counted examples.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Errored
}

// Add records one outcome.
func (c *Counts) Add(o Outcome) {
	switch o {
	case OutcomePassed:
		c.Passed++
	case OutcomeFailed:
		c.Failed++
	case OutcomeErrored:
		c.Errored++
	}
}

// OK reports whether nothing failed or errored.
func (c Counts) OK() bool {
	return c.Failed == 0 && c.Errored == 0
}

// ReportNode is one child of a GroupReport: exactly one field is set.
type ReportNode struct {
	Group  *GroupReport
	Result *Result
}

// GroupReport mirrors a declared group, limited to what the run selected.
type GroupReport struct {
	Name     string
	Path     []string
	Declared int // examples declared under the group, nested included
	Children []ReportNode
}

// Counts derives the group's status from its descendants.
func (g *GroupReport) Counts() Counts {
	var c Counts
	for _, child := range g.Children {
		if child.Group != nil {
			sub := child.Group.Counts()
			c.Passed += sub.Passed
			c.Failed += sub.Failed
			c.Errored += sub.Errored
		} else if child.Result != nil {
			c.Add(child.Result.Outcome)
		}
	}
	return c
}

// Report is the outcome of one traversal.
type Report struct {
	Root    *GroupReport
	Results []*Result // every result, in execution order
	Counts  Counts
	Elapsed time.Duration
	Bailed  bool // stopped after the first non-passed example
	Aborted bool // stopped by cancellation between examples
}

// OK reports whether the run should exit successfully.
func (r *Report) OK() bool {
	return r.Counts.OK()
}
