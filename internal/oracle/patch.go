package oracle

import (
	"fmt"

	"github.com/dop251/goja"
)

// Patch sets key on target and returns a function that puts the previous
// state back: the old own value, or no own key at all. Examples that touch
// shared built-ins call restore before they finish.
func (r *Realm) Patch(target goja.Value, key string, value goja.Value) (restore func() error, err error) {
	if Nullish(target) {
		return nil, fmt.Errorf("patch %q: target is %s", key, r.Display(target))
	}
	obj := target.ToObject(r.vm)
	had := r.HasOwn(obj, key)
	old := obj.Get(key)
	if err := obj.Set(key, value); err != nil {
		return nil, fmt.Errorf("patch %q: %w", key, err)
	}
	return func() error {
		if had {
			return obj.Set(key, old)
		}
		return obj.Delete(key)
	}, nil
}

// installGlobals exposes the delegation helper and scoped patching to
// sources.
func (r *Realm) installGlobals() error {
	if err := r.vm.Set("from", func(call goja.FunctionCall) goja.Value {
		obj, err := r.From(call.Argument(0))
		if err != nil {
			r.Throw(err)
		}
		return obj
	}); err != nil {
		return err
	}
	return r.vm.Set("patch", func(call goja.FunctionCall) goja.Value {
		restore, err := r.Patch(call.Argument(0), call.Argument(1).String(), call.Argument(2))
		if err != nil {
			r.Throw(err)
		}
		return r.vm.ToValue(func(goja.FunctionCall) goja.Value {
			if err := restore(); err != nil {
				r.Throw(err)
			}
			return goja.Undefined()
		})
	})
}
