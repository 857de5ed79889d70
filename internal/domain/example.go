package domain

import (
	"context"
	"time"
)

// Body is the procedure an Example runs. A nil return means every check
// held; an error wrapping an expectation failure marks the example failed,
// any other error marks it errored.
type Body func(ctx context.Context) error

// Example is a single named check. It is not modified after registration.
type Example struct {
	Name    string
	Body    Body
	Timeout time.Duration // zero means the run-wide default
	Source  string        // file the example was declared in, if any
}

// Node is one child of a Group: exactly one of Group or Example is set.
type Node struct {
	Group   *Group
	Example *Example
}

// Group is a named, ordered collection of child groups and examples.
type Group struct {
	Name     string
	Children []Node
}

// AddGroup appends a child group and returns it.
func (g *Group) AddGroup(name string) *Group {
	child := &Group{Name: name}
	g.Children = append(g.Children, Node{Group: child})
	return child
}

// AddExample appends a child example.
func (g *Group) AddExample(ex *Example) {
	g.Children = append(g.Children, Node{Example: ex})
}

// CountExamples returns the number of examples declared under g, nested
// groups included.
func (g *Group) CountExamples() int {
	n := 0
	for _, child := range g.Children {
		if child.Group != nil {
			n += child.Group.CountExamples()
		} else if child.Example != nil {
			n++
		}
	}
	return n
}
