package oracle

import (
	"strconv"

	"github.com/dop251/goja"
)

// Resolution describes where a property lookup found its key.
type Resolution struct {
	Value goja.Value
	Owner *goja.Object // the link in the delegation chain holding the key
	Depth int          // 0 for an own key, 1 for the prototype, and so on
}

// Inherited reports whether the key came from a prototype.
func (res Resolution) Inherited() bool {
	return res.Depth > 0
}

// Nullish reports whether v is null or undefined.
func Nullish(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// HasOwn reports whether v directly holds key. Null and undefined hold
// nothing.
func (r *Realm) HasOwn(v goja.Value, key string) bool {
	if Nullish(v) {
		return false
	}
	res, err := r.hasOwn(goja.Undefined(), v, r.vm.ToValue(key))
	return err == nil && res.ToBoolean()
}

// Lookup resolves key on v through its delegation chain: own keys first,
// then each prototype in turn, until the chain ends.
func (r *Realm) Lookup(v goja.Value, key string) (Resolution, bool) {
	if Nullish(v) {
		return Resolution{}, false
	}
	receiver := v.ToObject(r.vm)
	depth := 0
	for link := receiver; link != nil; link = link.Prototype() {
		if r.HasOwn(link, key) {
			return Resolution{Value: receiver.Get(key), Owner: link, Depth: depth}, true
		}
		depth++
	}
	return Resolution{}, false
}

// Keys returns the names a for-in loop over v visits, own and inherited.
// The order carries no meaning.
func (r *Realm) Keys(v goja.Value) []string {
	if Nullish(v) {
		return nil
	}
	return r.names(r.forIn(goja.Undefined(), v))
}

// OwnKeys returns v's own enumerable names. The order carries no meaning.
func (r *Realm) OwnKeys(v goja.Value) []string {
	if Nullish(v) {
		return nil
	}
	return r.names(r.ownKeys(goja.Undefined(), v))
}

func (r *Realm) names(res goja.Value, err error) []string {
	if err != nil || Nullish(res) {
		return nil
	}
	arr := res.ToObject(r.vm)
	n := int(arr.Get("length").ToInteger())
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, arr.Get(strconv.Itoa(i)).String())
	}
	return out
}

// From returns a new empty object whose only delegation link is parent.
// A null parent yields an object with no prototype at all.
func (r *Realm) From(parent goja.Value) (*goja.Object, error) {
	obj := r.vm.NewObject()
	if goja.IsNull(parent) {
		return obj, obj.SetPrototype(nil)
	}
	if r.TypeOf(parent) != "object" && r.TypeOf(parent) != "function" {
		return nil, &ScriptError{Name: "TypeError", Message: "from: parent must be an object or null, got " + r.Display(parent)}
	}
	return obj, obj.SetPrototype(parent.ToObject(r.vm))
}
