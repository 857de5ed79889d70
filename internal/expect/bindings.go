package expect

import (
	"strconv"

	"github.com/dop251/goja"

	"conform/internal/oracle"
)

// Install defines the global expect(actual) in r. The returned object
// carries the predicates as methods, a negated twin under .not, and the
// chain words to, be and have, which return the object itself.
func Install(r *oracle.Realm) error {
	return r.Set("expect", func(call goja.FunctionCall) goja.Value {
		a := That(r, call.Argument(0))
		obj := bind(r, a)
		_ = obj.Set("not", bind(r, a.Not()))
		return obj
	})
}

func bind(r *oracle.Realm, a *Assertion) *goja.Object {
	vm := r.Runtime()
	obj := vm.NewObject()

	method := func(name string, check func(call goja.FunctionCall) error) {
		_ = obj.Set(name, func(call goja.FunctionCall) goja.Value {
			if err := check(call); err != nil {
				r.Throw(err)
			}
			return obj
		})
	}

	method("equal", func(call goja.FunctionCall) error {
		return a.Equal(call.Argument(0))
	})
	method("ok", func(goja.FunctionCall) error {
		return a.Ok()
	})
	method("exist", func(goja.FunctionCall) error {
		return a.Exist()
	})
	method("nan", func(goja.FunctionCall) error {
		return a.NaN()
	})
	method("infinity", func(call goja.FunctionCall) error {
		sign := 0
		if arg := call.Argument(0); !goja.IsUndefined(arg) {
			sign = int(arg.ToInteger())
		}
		return a.Infinity(sign)
	})
	method("property", func(call goja.FunctionCall) error {
		key := call.Argument(0).String()
		if len(call.Arguments) > 1 {
			return a.Property(key, call.Argument(1))
		}
		return a.Property(key)
	})
	method("ownProperty", func(call goja.FunctionCall) error {
		key := call.Argument(0).String()
		if len(call.Arguments) > 1 {
			return a.OwnProperty(key, call.Argument(1))
		}
		return a.OwnProperty(key)
	})
	method("throw", func(call goja.FunctionCall) error {
		if arg := call.Argument(0); !goja.IsUndefined(arg) {
			return a.Throw(arg.String())
		}
		return a.Throw()
	})
	method("keys", func(call goja.FunctionCall) error {
		return a.Keys(stringList(call.Arguments)...)
	})
	method("ownKeys", func(call goja.FunctionCall) error {
		return a.OwnKeys(stringList(call.Arguments)...)
	})

	for _, word := range []string{"to", "be", "have"} {
		_ = obj.Set(word, obj)
	}
	return obj
}

// stringList accepts either one array argument or the names spread out.
func stringList(args []goja.Value) []string {
	if len(args) == 1 {
		if obj, ok := args[0].(*goja.Object); ok && obj.ClassName() == "Array" {
			n := int(obj.Get("length").ToInteger())
			out := make([]string, 0, n)
			for i := 0; i < n; i++ {
				out = append(out, obj.Get(strconv.Itoa(i)).String())
			}
			return out
		}
	}
	out := make([]string, 0, len(args))
	for _, v := range args {
		out = append(out, v.String())
	}
	return out
}
