package execution

import (
	"conform/internal/domain"
)

// Step is one example to run, with the names of its enclosing groups.
type Step struct {
	Path    []string
	Example *domain.Example
}

// FullPath returns the group path followed by the example name.
func (s Step) FullPath() []string {
	full := make([]string, 0, len(s.Path)+1)
	full = append(full, s.Path...)
	return append(full, s.Example.Name)
}

// Planner orders the examples of a tree for execution
type Planner interface {
	Plan(root *domain.Group, selector Selector) []Step
}

// DepthFirstPlanner yields examples in declaration order: each group's
// children in turn, descending into nested groups as they appear.
type DepthFirstPlanner struct{}

// NewDepthFirstPlanner creates a new DepthFirstPlanner
func NewDepthFirstPlanner() *DepthFirstPlanner {
	return &DepthFirstPlanner{}
}

// Plan flattens root into the selected steps. A nil selector selects all.
func (p *DepthFirstPlanner) Plan(root *domain.Group, selector Selector) []Step {
	if selector == nil {
		selector = All{}
	}
	var steps []Step
	p.walk(root, nil, func(step Step) {
		if selector.Match(step.FullPath()) {
			steps = append(steps, step)
		}
	})
	return steps
}

func (p *DepthFirstPlanner) walk(g *domain.Group, path []string, visit func(Step)) {
	if g == nil {
		return
	}
	for _, child := range g.Children {
		switch {
		case child.Group != nil:
			p.walk(child.Group, childPath(path, child.Group.Name), visit)
		case child.Example != nil:
			visit(Step{Path: path, Example: child.Example})
		}
	}
}

// childPath copies so sibling paths never share a backing array.
func childPath(path []string, name string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, name)
}
