// Package loader turns spec sources into a registered group tree. Script
// sources call the describe and it globals; declarative sources are walked
// entry by entry. Every example body is closed over the caller's realm.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dop251/goja"

	"conform/internal/discovery"
	"conform/internal/domain"
	"conform/internal/oracle"
	"conform/internal/suite"
)

// SourceError reports a source that could not be loaded.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return e.Source + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Loader registers examples from sources into a registry.
type Loader struct {
	realm    *oracle.Realm
	registry *suite.Registry
	parser   *discovery.Parser
	logger   *slog.Logger

	source string // file currently being loaded
}

// New creates a loader and installs the describe and it globals in realm.
func New(realm *oracle.Realm, registry *suite.Registry, logger *slog.Logger) (*Loader, error) {
	l := &Loader{
		realm:    realm,
		registry: registry,
		parser:   discovery.NewParser(),
		logger:   logger,
	}
	if err := realm.Set("describe", l.describe); err != nil {
		return nil, fmt.Errorf("install describe: %w", err)
	}
	if err := realm.Set("it", l.it); err != nil {
		return nil, fmt.Errorf("install it: %w", err)
	}
	return l, nil
}

// LoadFiles loads each source in order and stops at the first error.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := l.LoadFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile loads one source, choosing the format by its suffix.
func (l *Loader) LoadFile(ctx context.Context, path string) error {
	name := filepath.Base(path)
	switch {
	case strings.HasSuffix(name, ".spec.js"):
		src, err := os.ReadFile(path)
		if err != nil {
			return &SourceError{Source: path, Err: err}
		}
		return l.LoadJS(ctx, path, string(src))
	case strings.HasSuffix(name, ".spec.yaml"), strings.HasSuffix(name, ".spec.yml"):
		doc, err := l.parser.ParseFile(path)
		if err != nil {
			return &SourceError{Source: path, Err: err}
		}
		return l.LoadDocument(ctx, path, doc)
	default:
		return &SourceError{Source: path, Err: fmt.Errorf("unsupported source type")}
	}
}

// LoadJS evaluates a script source. Its top-level describe calls register
// groups as they run.
func (l *Loader) LoadJS(ctx context.Context, path, src string) error {
	before := l.count()
	l.source = path
	defer func() { l.source = "" }()

	if _, err := l.realm.Eval(ctx, path, src); err != nil {
		return &SourceError{Source: path, Err: err}
	}
	if l.registry.Depth() != 0 {
		return &SourceError{Source: path, Err: suite.ErrUnbalanced}
	}
	l.logger.Debug("loaded source", "path", path, "examples", l.count()-before)
	return nil
}

// LoadDocument registers a parsed declarative source. The prelude is
// evaluated first, so bodies may use what it defines.
func (l *Loader) LoadDocument(ctx context.Context, path string, doc *discovery.Document) error {
	before := l.count()
	if doc.Prelude != "" {
		if _, err := l.realm.Eval(ctx, path+":prelude", doc.Prelude); err != nil {
			return &SourceError{Source: path, Err: fmt.Errorf("prelude: %w", err)}
		}
	}
	for _, entry := range doc.Entries {
		if err := l.register(path, entry); err != nil {
			return &SourceError{Source: path, Err: err}
		}
	}
	l.logger.Debug("loaded source", "path", path, "examples", l.count()-before)
	return nil
}

func (l *Loader) register(path string, e discovery.Entry) error {
	if e.IsGroup() {
		return l.registry.Describe(e.Describe, func() error {
			for _, child := range e.Children {
				if err := l.register(path, child); err != nil {
					return err
				}
			}
			return nil
		})
	}

	fn, err := l.realm.Compile(fmt.Sprintf("%s:%d", path, e.Line), e.Body)
	if err != nil {
		return fmt.Errorf("line %d: it %q: %w", e.Line, e.It, err)
	}
	timeout, err := e.TimeoutDuration()
	if err != nil {
		return fmt.Errorf("line %d: %w", e.Line, err)
	}
	if err := l.registry.It(e.It, l.body(fn), suite.WithTimeout(timeout), suite.WithSource(path)); err != nil {
		return fmt.Errorf("line %d: %w", e.Line, err)
	}
	return nil
}

// describe(name, fn) is the script form of Registry.Describe.
func (l *Loader) describe(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		l.realm.Throw(fmt.Errorf("describe %q: second argument must be a function", name))
	}
	err := l.registry.Describe(name, func() error {
		_, err := l.realm.Call(fn)
		return err
	})
	if err != nil {
		l.realm.Throw(err)
	}
	return goja.Undefined()
}

// it(name, fn, timeoutMs) is the script form of Registry.It.
func (l *Loader) it(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		l.realm.Throw(fmt.Errorf("it %q: second argument must be a function", name))
	}
	opts := []suite.ExampleOption{suite.WithSource(l.source)}
	if ms := call.Argument(2); !goja.IsUndefined(ms) {
		opts = append(opts, suite.WithTimeout(time.Duration(ms.ToInteger())*time.Millisecond))
	}
	if err := l.registry.It(name, l.body(fn), opts...); err != nil {
		l.realm.Throw(err)
	}
	return goja.Undefined()
}

func (l *Loader) body(fn goja.Callable) domain.Body {
	return func(ctx context.Context) error {
		return l.realm.Invoke(ctx, fn)
	}
}

func (l *Loader) count() int {
	return l.registry.Count()
}
