package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conform/internal/domain"
	"conform/internal/expect"
	"conform/internal/logging"
	"conform/internal/oracle"
	"conform/internal/suite"
)

type fixture struct {
	realm    *oracle.Realm
	registry *suite.Registry
	loader   *Loader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	realm, err := oracle.New()
	require.NoError(t, err)
	require.NoError(t, expect.Install(realm))
	registry := suite.New()
	l, err := New(realm, registry, logging.NewNop())
	require.NoError(t, err)
	return &fixture{realm: realm, registry: registry, loader: l}
}

func (f *fixture) root(t *testing.T) *domain.Group {
	t.Helper()
	root, err := f.registry.Root()
	require.NoError(t, err)
	return root
}

func TestLoadJS_RegistersTree(t *testing.T) {
	f := newFixture(t)

	err := f.loader.LoadJS(context.Background(), "numbers.spec.js", `
describe('Grammar', function () {
  describe('Numbers', function () {
    it('division by zero is Infinity', function () {
      expect(1 / 0).to.be.infinity(1);
    });
    it('bad', function () {
      expect(2).to.equal(1);
    }, 250);
  });
  describe('Empty', function () {});
});
`)
	require.NoError(t, err)

	root := f.root(t)
	require.Len(t, root.Children, 1)
	grammar := root.Children[0].Group
	assert.Equal(t, "Grammar", grammar.Name)
	require.Len(t, grammar.Children, 2)

	numbers := grammar.Children[0].Group
	assert.Equal(t, "Numbers", numbers.Name)
	require.Len(t, numbers.Children, 2)
	assert.Empty(t, grammar.Children[1].Group.Children)

	pass := numbers.Children[0].Example
	fail := numbers.Children[1].Example
	assert.Equal(t, "numbers.spec.js", pass.Source)
	assert.Zero(t, pass.Timeout)
	assert.Equal(t, 250*time.Millisecond, fail.Timeout)

	ctx := context.Background()
	assert.NoError(t, pass.Body(ctx))

	var failure *expect.Failure
	require.ErrorAs(t, fail.Body(ctx), &failure)
	assert.Equal(t, "1", failure.Expected)
	assert.Equal(t, "2", failure.Actual)
}

func TestLoadJS_BodiesGetFreshScope(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.loader.LoadJS(context.Background(), "scope.spec.js", `
describe('Scope', function () {
  it('declares', function () {
    var local = 1;
    expect(local).to.equal(1);
  });
  it('cannot see it', function () {
    expect(typeof local).to.equal('undefined');
  });
});
`))

	scope := f.root(t).Children[0].Group
	for _, child := range scope.Children {
		assert.NoError(t, child.Example.Body(context.Background()), child.Example.Name)
	}
}

func TestLoadJS_ItOutsideGroup(t *testing.T) {
	f := newFixture(t)

	err := f.loader.LoadJS(context.Background(), "loose.spec.js", `it('loose', function () {});`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, suite.ErrOutsideGroup), "got %v", err)

	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "loose.spec.js", se.Source)
}

func TestLoadJS_BuilderErrorAbortsLoad(t *testing.T) {
	f := newFixture(t)

	err := f.loader.LoadJS(context.Background(), "broken.spec.js", `
describe('Outer', function () {
  it('registered', function () {});
  missing();
});
`)
	require.Error(t, err)

	var script *oracle.ScriptError
	require.ErrorAs(t, err, &script)
	assert.Equal(t, "ReferenceError", script.Name)
	assert.Contains(t, err.Error(), `describe "Outer"`)
	assert.Equal(t, 0, f.registry.Depth())
}

func TestLoadJS_RejectsNonFunctionBody(t *testing.T) {
	f := newFixture(t)

	err := f.loader.LoadJS(context.Background(), "bad.spec.js", `describe('G', function () { it('x', 42); });`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second argument must be a function")
}

func TestLoadFile_YAML(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "numbers.spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
prelude: |
  function half(n) { return n / 2; }
groups:
  - describe: Numbers
    children:
      - it: halves
        body: expect(half(3)).to.equal(1.5);
      - it: slow
        timeout: 20ms
        body: for (;;) {}
`), 0644))

	require.NoError(t, f.loader.LoadFile(context.Background(), path))

	numbers := f.root(t).Children[0].Group
	require.Len(t, numbers.Children, 2)

	halves := numbers.Children[0].Example
	assert.Equal(t, path, halves.Source)
	assert.NoError(t, halves.Body(context.Background()))

	slow := numbers.Children[1].Example
	assert.Equal(t, 20*time.Millisecond, slow.Timeout)
	ctx, cancel := context.WithTimeout(context.Background(), slow.Timeout)
	defer cancel()
	assert.ErrorIs(t, slow.Body(ctx), context.DeadlineExceeded)
}

func TestLoadFile_YAMLCompileError(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
groups:
  - describe: Broken
    children:
      - it: does not parse
        body: "var in;"
`), 0644))

	err := f.loader.LoadFile(context.Background(), path)
	require.Error(t, err)

	var se *SourceError
	require.ErrorAs(t, err, &se)
	var script *oracle.ScriptError
	require.ErrorAs(t, err, &script)
	assert.Equal(t, "SyntaxError", script.Name)
	assert.Contains(t, err.Error(), "does not parse")
}

func TestLoadFiles(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	js := filepath.Join(dir, "a.spec.js")
	require.NoError(t, os.WriteFile(js, []byte(`describe('A', function () { it('a', function () {}); });`), 0644))
	yml := filepath.Join(dir, "b.spec.yml")
	require.NoError(t, os.WriteFile(yml, []byte("groups:\n  - describe: B\n    children:\n      - it: b\n        body: 'return 1;'\n"), 0644))

	require.NoError(t, f.loader.LoadFiles(context.Background(), []string{js, yml}))

	root := f.root(t)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "A", root.Children[0].Group.Name)
	assert.Equal(t, "B", root.Children[1].Group.Name)
	assert.Equal(t, 2, root.CountExamples())

	err := f.loader.LoadFile(context.Background(), filepath.Join(dir, "c.txt"))
	var se *SourceError
	require.ErrorAs(t, err, &se)
}
