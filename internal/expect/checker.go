package expect

import (
	"context"

	"github.com/dop251/goja"

	"conform/internal/oracle"
)

// Checker collects expectations for a Go-authored example body. The first
// failure sticks: later checks are skipped and Err reports it.
type Checker struct {
	ctx   context.Context
	realm *oracle.Realm
	err   error
}

// New returns a checker evaluating against r.
func New(ctx context.Context, r *oracle.Realm) *Checker {
	return &Checker{ctx: ctx, realm: r}
}

// Eval evaluates src in the realm. An evaluation error is recorded and the
// result is undefined.
func (c *Checker) Eval(src string) goja.Value {
	if c.err != nil {
		return goja.Undefined()
	}
	v, err := c.realm.Eval(c.ctx, "conform:eval", src)
	if err != nil {
		c.err = err
		return goja.Undefined()
	}
	return v
}

// That starts an assertion whose outcome is recorded by the checker.
func (c *Checker) That(actual interface{}) *Assertion {
	a := That(c.realm, actual)
	a.sink = c
	return a
}

// Err returns the first recorded failure or evaluation error.
func (c *Checker) Err() error {
	return c.err
}
