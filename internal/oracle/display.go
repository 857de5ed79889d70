package oracle

import (
	"math"
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\t", `\t`)

// TypeOf returns the typeof classification of v.
func (r *Realm) TypeOf(v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	res, err := r.typeOf(goja.Undefined(), v)
	if err != nil {
		return "unknown"
	}
	return res.String()
}

// Display renders v unambiguously for failure messages: strings are
// quoted, so the number NaN never reads like the string 'NaN'.
func (r *Realm) Display(v goja.Value) string {
	return r.display(v, 0)
}

func (r *Realm) display(v goja.Value, depth int) string {
	switch r.TypeOf(v) {
	case "undefined":
		return "undefined"
	case "string":
		return "'" + quoteReplacer.Replace(v.String()) + "'"
	case "number":
		return displayNumber(v)
	case "function":
		name := v.ToObject(r.vm).Get("name")
		if name == nil || goja.IsUndefined(name) || name.String() == "" {
			return "[Function (anonymous)]"
		}
		return "[Function: " + name.String() + "]"
	case "object":
		if goja.IsNull(v) {
			return "null"
		}
		return r.displayObject(v.ToObject(r.vm), depth)
	default:
		return v.String()
	}
}

func displayNumber(v goja.Value) string {
	if goja.IsNaN(v) {
		return "NaN"
	}
	f := v.ToFloat()
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == 0 && math.Signbit(f) {
		return "-0"
	}
	return v.String()
}

func (r *Realm) displayObject(obj *goja.Object, depth int) string {
	switch obj.ClassName() {
	case "Error":
		return obj.Get("name").String() + ": " + obj.Get("message").String()
	case "Array":
		if depth > 0 {
			return "[Array]"
		}
		n := int(obj.Get("length").ToInteger())
		if n == 0 {
			return "[]"
		}
		parts := make([]string, 0, n)
		for i := 0; i < n && i < 10; i++ {
			parts = append(parts, r.display(obj.Get(strconv.Itoa(i)), depth+1))
		}
		if n > 10 {
			parts = append(parts, "...")
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	}
	if depth > 0 {
		return "[Object]"
	}
	keys := r.OwnKeys(obj)
	if len(keys) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+r.display(obj.Get(k), depth+1))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
