package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRealm(t *testing.T) *Realm {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func eval(t *testing.T, r *Realm, src string) goja.Value {
	t.Helper()
	v, err := r.Eval(context.Background(), "test.js", src)
	require.NoError(t, err)
	return v
}

func TestDisplay(t *testing.T) {
	r := newRealm(t)

	tests := []struct {
		src  string
		want string
	}{
		{"1/0", "Infinity"},
		{"-1/0", "-Infinity"},
		{"0/0", "NaN"},
		{"'NaN'", "'NaN'"},
		{"1.0", "1"},
		{"2.5", "2.5"},
		{"-0", "-0"},
		{"'it\\'s'", `'it\'s'`},
		{"undefined", "undefined"},
		{"null", "null"},
		{"true", "true"},
		{"({})", "{}"},
		{"({ a: 'foo', b: { c: 1 } })", "{ a: 'foo', b: [Object] }"},
		{"[1, 'x']", "[ 1, 'x' ]"},
		{"(function named() {})", "[Function: named]"},
		{"new TypeError('bad')", "TypeError: bad"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Display(eval(t, r, tt.src)))
		})
	}
}

func TestLookup_DelegationChain(t *testing.T) {
	r := newRealm(t)
	eval(t, r, `
		var foo = { a: 'foo' };
		var bar = from(foo);
		var qux = from(bar);
		bar.b = 'bar';
		qux.c = 'qux';
	`)
	qux := r.Runtime().Get("qux")
	bar := r.Runtime().Get("bar")

	res, ok := r.Lookup(qux, "c")
	require.True(t, ok)
	assert.Equal(t, 0, res.Depth)
	assert.False(t, res.Inherited())

	res, ok = r.Lookup(qux, "b")
	require.True(t, ok)
	assert.Equal(t, 1, res.Depth)
	assert.Equal(t, "bar", res.Value.String())
	assert.True(t, res.Owner.SameAs(bar))

	res, ok = r.Lookup(qux, "a")
	require.True(t, ok)
	assert.Equal(t, 2, res.Depth)

	_, ok = r.Lookup(qux, "d")
	assert.False(t, ok)

	assert.True(t, r.HasOwn(qux, "c"))
	assert.False(t, r.HasOwn(qux, "a"))
}

func TestLookup_Nullish(t *testing.T) {
	r := newRealm(t)
	_, ok := r.Lookup(goja.Undefined(), "x")
	assert.False(t, ok)
	_, ok = r.Lookup(goja.Null(), "x")
	assert.False(t, ok)
	assert.False(t, r.HasOwn(goja.Null(), "x"))
}

func TestFrom_NullParent(t *testing.T) {
	r := newRealm(t)
	obj, err := r.From(goja.Null())
	require.NoError(t, err)
	assert.Nil(t, obj.Prototype())

	_, err = r.From(r.ToValue(1))
	var se *ScriptError
	assert.ErrorAs(t, err, &se)
}

func TestKeys_AreASet(t *testing.T) {
	r := newRealm(t)
	eval(t, r, `var base = { a: 1 }; var child = from(base); child.b = 2;`)
	child := r.Runtime().Get("child")

	assert.ElementsMatch(t, []string{"a", "b"}, r.Keys(child))
	assert.ElementsMatch(t, []string{"b"}, r.OwnKeys(child))
	assert.Nil(t, r.Keys(goja.Undefined()))
}

func TestPatch_RestoresBuiltins(t *testing.T) {
	r := newRealm(t)
	proto := eval(t, r, "Object.prototype")

	restore, err := r.Patch(proto, "bar", r.ToValue("bar of Object"))
	require.NoError(t, err)
	assert.Equal(t, "bar of Object", eval(t, r, "({}).bar").String())

	require.NoError(t, restore())
	assert.True(t, goja.IsUndefined(eval(t, r, "({}).bar")))
}

func TestPatch_RestoresPreviousValue(t *testing.T) {
	r := newRealm(t)
	eval(t, r, `var o = { k: 'old' };`)

	eval(t, r, `var undo = patch(o, 'k', 'new');`)
	assert.Equal(t, "new", eval(t, r, "o.k").String())
	eval(t, r, `undo();`)
	assert.Equal(t, "old", eval(t, r, "o.k").String())
}

func TestInvoke_ScriptError(t *testing.T) {
	r := newRealm(t)
	fn, err := r.Compile("body.js", "var foo = null; return foo.bar;")
	require.NoError(t, err)

	err = r.Invoke(context.Background(), fn)
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "TypeError", se.Name)
}

func TestInvoke_ThrownGoErrorComesBack(t *testing.T) {
	r := newRealm(t)
	sentinel := errors.New("sentinel")
	require.NoError(t, r.Set("fail", func(goja.FunctionCall) goja.Value {
		r.Throw(sentinel)
		return nil
	}))

	fn, err := r.Compile("body.js", "fail();")
	require.NoError(t, err)
	assert.Same(t, sentinel, r.Invoke(context.Background(), fn))
}

func TestInvoke_Timeout(t *testing.T) {
	r := newRealm(t)
	fn, err := r.Compile("loop.js", "for (;;) {}")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = r.Invoke(ctx, fn)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The realm is usable again afterwards.
	assert.Equal(t, "2", eval(t, r, "1 + 1").String())
}

func TestInvoke_Promises(t *testing.T) {
	r := newRealm(t)

	resolved, err := r.Compile("ok.js", "return Promise.resolve(1);")
	require.NoError(t, err)
	assert.NoError(t, r.Invoke(context.Background(), resolved))

	rejected, err := r.Compile("rejected.js", "return Promise.reject(new RangeError('nope'));")
	require.NoError(t, err)
	var se *ScriptError
	require.ErrorAs(t, r.Invoke(context.Background(), rejected), &se)
	assert.Equal(t, "RangeError", se.Name)

	pending, err := r.Compile("pending.js", "return new Promise(function () {});")
	require.NoError(t, err)
	assert.ErrorIs(t, r.Invoke(context.Background(), pending), ErrUnsettled)
}

func TestInvoke_RejectionKeepsThrownGoError(t *testing.T) {
	r := newRealm(t)
	sentinel := errors.New("sentinel")
	require.NoError(t, r.Set("fail", func(goja.FunctionCall) goja.Value {
		r.Throw(sentinel)
		return nil
	}))

	fn, err := r.Compile("later.js", "return Promise.resolve(2).then(function () { fail(); });")
	require.NoError(t, err)
	assert.Same(t, sentinel, r.Invoke(context.Background(), fn))
}

func TestCompile_SyntaxError(t *testing.T) {
	r := newRealm(t)
	_, err := r.Compile("bad.js", "var in;")
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "SyntaxError", se.Name)
}

func TestEval_CancelledContext(t *testing.T) {
	r := newRealm(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Eval(ctx, "x.js", "1")
	assert.ErrorIs(t, err, context.Canceled)
}
