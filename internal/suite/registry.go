// Package suite is the registration API for conformance examples: callers
// open named groups, declare examples inside them and close the groups
// again, producing the tree the engine walks.
package suite

import (
	"errors"
	"fmt"
	"time"

	"conform/internal/domain"
)

var (
	// ErrOutsideGroup is returned when an example is declared with no
	// group open.
	ErrOutsideGroup = errors.New("example declared outside any group")
	// ErrUnbalanced is returned when a group is closed that was never
	// opened, or when the tree is requested while groups are still open.
	ErrUnbalanced = errors.New("unbalanced group nesting")
	// ErrSealed is returned when a group or example is declared after the
	// tree has been handed out by Root.
	ErrSealed = errors.New("registration is closed")
)

// ExampleOption customises a declared example.
type ExampleOption func(*domain.Example)

// WithTimeout overrides the run-wide timeout for one example.
func WithTimeout(d time.Duration) ExampleOption {
	return func(e *domain.Example) { e.Timeout = d }
}

// WithSource records the file an example came from.
func WithSource(source string) ExampleOption {
	return func(e *domain.Example) { e.Source = source }
}

// Registry accumulates a group tree. It is not safe for concurrent use.
type Registry struct {
	root   *domain.Group
	stack  []*domain.Group
	sealed bool
}

// New returns an empty registry. Its root group is anonymous and never
// counts as open.
func New() *Registry {
	return &Registry{root: &domain.Group{}}
}

// Begin opens a group nested in the current one.
func (r *Registry) Begin(name string) error {
	if r.sealed {
		return fmt.Errorf("describe %q: %w", name, ErrSealed)
	}
	r.stack = append(r.stack, r.current().AddGroup(name))
	return nil
}

// End closes the innermost open group.
func (r *Registry) End() error {
	if len(r.stack) == 0 {
		return ErrUnbalanced
	}
	r.stack = r.stack[:len(r.stack)-1]
	return nil
}

// Describe opens a group, runs build to populate it and closes the group
// on every exit path, including a panic in build.
func (r *Registry) Describe(name string, build func() error) (err error) {
	if err := r.Begin(name); err != nil {
		return err
	}
	depth := len(r.stack)
	defer func() {
		// build may have left inner groups open; unwind to our own level.
		r.stack = r.stack[:depth-1]
	}()
	if build == nil {
		return nil
	}
	if err := build(); err != nil {
		return fmt.Errorf("describe %q: %w", name, err)
	}
	if len(r.stack) != depth {
		return fmt.Errorf("describe %q: %w", name, ErrUnbalanced)
	}
	return nil
}

// It declares an example in the innermost open group.
func (r *Registry) It(name string, body domain.Body, opts ...ExampleOption) error {
	if r.sealed {
		return fmt.Errorf("it %q: %w", name, ErrSealed)
	}
	if len(r.stack) == 0 {
		return fmt.Errorf("it %q: %w", name, ErrOutsideGroup)
	}
	if body == nil {
		return fmt.Errorf("it %q: missing body", name)
	}
	ex := &domain.Example{Name: name, Body: body}
	for _, opt := range opts {
		opt(ex)
	}
	r.current().AddExample(ex)
	return nil
}

// Depth returns the number of open groups.
func (r *Registry) Depth() int {
	return len(r.stack)
}

// Count returns the number of examples declared so far.
func (r *Registry) Count() int {
	return r.root.CountExamples()
}

// Root returns the registered tree and closes registration: later Begin,
// Describe and It calls fail with ErrSealed. It fails while groups remain
// open.
func (r *Registry) Root() (*domain.Group, error) {
	if len(r.stack) != 0 {
		return nil, fmt.Errorf("%d group(s) left open: %w", len(r.stack), ErrUnbalanced)
	}
	r.sealed = true
	return r.root, nil
}

func (r *Registry) current() *domain.Group {
	if len(r.stack) == 0 {
		return r.root
	}
	return r.stack[len(r.stack)-1]
}
