// Package oracle wraps the JavaScript runtime whose semantics the
// conformance examples document. A Realm owns one goja runtime; its
// built-in objects are shared by every example evaluated in it.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// helpers are evaluated once per realm; they answer questions that have no
// direct goja Go API (own-key checks, for-in enumeration, typeof).
const helpers = `({
	hasOwn: function (o, k) { return Object.prototype.hasOwnProperty.call(o, k); },
	forIn: function (o) { var ks = []; for (var k in o) { ks.push(k); } return ks; },
	ownKeys: function (o) { return Object.keys(Object(o)); },
	typeOf: function (v) { return typeof v; }
})`

// Realm is a live language runtime used as the oracle. It is not safe for
// concurrent use: examples run one at a time.
type Realm struct {
	vm     *goja.Runtime
	thrown map[*goja.Object]error

	hasOwn  goja.Callable
	forIn   goja.Callable
	ownKeys goja.Callable
	typeOf  goja.Callable
}

// New creates a realm and installs the source-facing globals from and patch.
func New() (*Realm, error) {
	r := &Realm{
		vm:     goja.New(),
		thrown: make(map[*goja.Object]error),
	}

	v, err := r.vm.RunScript("conform:helpers", helpers)
	if err != nil {
		return nil, fmt.Errorf("init oracle helpers: %w", err)
	}
	obj := v.ToObject(r.vm)
	for name, dst := range map[string]*goja.Callable{
		"hasOwn":  &r.hasOwn,
		"forIn":   &r.forIn,
		"ownKeys": &r.ownKeys,
		"typeOf":  &r.typeOf,
	} {
		fn, ok := goja.AssertFunction(obj.Get(name))
		if !ok {
			return nil, fmt.Errorf("init oracle helpers: %s is not a function", name)
		}
		*dst = fn
	}

	if err := r.installGlobals(); err != nil {
		return nil, fmt.Errorf("init oracle globals: %w", err)
	}
	return r, nil
}

// Runtime exposes the underlying goja runtime.
func (r *Realm) Runtime() *goja.Runtime {
	return r.vm
}

// ToValue converts a Go value into a runtime value.
func (r *Realm) ToValue(v interface{}) goja.Value {
	if gv, ok := v.(goja.Value); ok {
		return gv
	}
	return r.vm.ToValue(v)
}

// Set defines a global binding.
func (r *Realm) Set(name string, value interface{}) error {
	return r.vm.Set(name, value)
}

// Eval evaluates source as a script and returns its completion value.
func (r *Realm) Eval(ctx context.Context, name, src string) (goja.Value, error) {
	return r.guard(ctx, func() (goja.Value, error) {
		return r.vm.RunScript(name, src)
	})
}

// Compile turns a function body into a callable. The body runs in its own
// function scope each time it is invoked.
func (r *Realm) Compile(name, body string) (goja.Callable, error) {
	v, err := r.vm.RunScript(name, "(function () {\n"+body+"\n})")
	if err != nil {
		return nil, r.translate(err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("%s: body did not compile to a function", name)
	}
	return fn, nil
}

// Invoke calls fn with no receiver. If fn returns a promise, the promise
// must have settled by the time the call returns. The promise is inspected
// inside the guard so a rejection raised with Throw still maps back to its
// Go error.
func (r *Realm) Invoke(ctx context.Context, fn goja.Callable, args ...goja.Value) error {
	_, err := r.guard(ctx, func() (goja.Value, error) {
		v, err := fn(goja.Undefined(), args...)
		if err != nil {
			return nil, err
		}
		return nil, r.settle(v)
	})
	return err
}

// Call invokes fn from inside running script code, e.g. from a native
// function. An interrupt that reaches fn is re-armed so it keeps unwinding
// the outer evaluation.
func (r *Realm) Call(fn goja.Callable, args ...goja.Value) (goja.Value, error) {
	v, err := fn(goja.Undefined(), args...)
	if err == nil {
		return v, nil
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		r.vm.Interrupt(interrupted.Value())
	}
	return v, r.translate(err)
}

// Throw raises err as a script exception from inside a native function.
// When the exception escapes to Go it is translated back into err itself.
func (r *Realm) Throw(err error) {
	obj := r.vm.NewGoError(err)
	var named interface{ ErrorName() string }
	if errors.As(err, &named) {
		_ = obj.Set("name", named.ErrorName())
	}
	r.thrown[obj] = err
	panic(obj)
}

// guard runs fn, interrupting the runtime when ctx is done.
// Cleanup is deferred so a Go panic escaping fn cannot leave a pending
// interrupt behind for the next evaluation.
func (r *Realm) guard(ctx context.Context, fn func() (goja.Value, error)) (v goja.Value, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		r.vm.Interrupt(ctx.Err())
		close(fired)
	})
	defer func() {
		if !stop() {
			<-fired
		}
		r.vm.ClearInterrupt()
		clear(r.thrown)
	}()

	v, err = fn()
	if err != nil {
		err = r.translate(err)
	}
	return v, err
}

// settle inspects a returned promise.
func (r *Realm) settle(v goja.Value) error {
	if v == nil {
		return nil
	}
	p, ok := v.Export().(*goja.Promise)
	if !ok {
		return nil
	}
	switch p.State() {
	case goja.PromiseStateFulfilled:
		return nil
	case goja.PromiseStateRejected:
		return r.fromThrown(p.Result(), nil)
	default:
		return ErrUnsettled
	}
}

// ErrInterrupted wraps the cause of an interrupted evaluation.
var ErrInterrupted = errors.New("interrupted")

// ErrUnsettled is returned when a body's promise is still pending after
// the body returned.
var ErrUnsettled = errors.New("promise never settled")

func (r *Realm) translate(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return fmt.Errorf("%w: %w", ErrInterrupted, cause)
		}
		return fmt.Errorf("%w: %v", ErrInterrupted, interrupted.Value())
	}
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return r.fromThrown(exc.Value(), exc)
	}
	var syntax *goja.CompilerSyntaxError
	if errors.As(err, &syntax) {
		return &ScriptError{Name: "SyntaxError", Message: syntax.Error()}
	}
	return err
}

// fromThrown maps a thrown value to a Go error: errors raised with Throw
// come back unchanged, anything else becomes a ScriptError.
func (r *Realm) fromThrown(v goja.Value, exc *goja.Exception) error {
	if obj, ok := v.(*goja.Object); ok {
		if orig, ok := r.thrown[obj]; ok {
			return orig
		}
	}
	se := &ScriptError{Value: r.Display(v)}
	if obj, ok := v.(*goja.Object); ok && r.TypeOf(v) == "object" {
		if name := obj.Get("name"); name != nil && !goja.IsUndefined(name) {
			se.Name = name.String()
		}
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			se.Message = msg.String()
		}
	}
	if se.Name == "" && se.Message == "" {
		se.Message = "uncaught " + se.Value
	}
	if exc != nil {
		se.Stack = stackLines(exc.String())
	}
	return se
}
