package expect

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dop251/goja"

	"conform/internal/oracle"
)

// Assertion checks one actual value. Each predicate returns nil when it
// holds and a *Failure when it does not.
type Assertion struct {
	realm  *oracle.Realm
	actual goja.Value
	negate bool
	sink   *Checker
}

// That starts an assertion about actual. Go values are converted into the
// realm first.
func That(r *oracle.Realm, actual interface{}) *Assertion {
	return &Assertion{realm: r, actual: r.ToValue(actual)}
}

// Not returns the negated form of the assertion.
func (a *Assertion) Not() *Assertion {
	n := *a
	n.negate = !a.negate
	return &n
}

// Equal checks strict identity: primitives by value, objects by reference.
func (a *Assertion) Equal(expected interface{}) error {
	if err := a.halted(); err != nil {
		return err
	}
	ev := a.realm.ToValue(expected)
	pass := a.actual.StrictEquals(ev)

	detail := ""
	if !pass && !a.negate && goja.IsNaN(a.actual) && goja.IsNaN(ev) {
		detail = "NaN is not equal to itself"
	}
	return a.check(pass, "equal", a.realm.Display(ev), detail)
}

// Ok checks truthiness.
func (a *Assertion) Ok() error {
	if err := a.halted(); err != nil {
		return err
	}
	return a.check(a.actual.ToBoolean(), "be truthy", "", "")
}

// Exist checks that the value is neither null nor undefined.
func (a *Assertion) Exist() error {
	if err := a.halted(); err != nil {
		return err
	}
	return a.check(!oracle.Nullish(a.actual), "exist", "", "")
}

// NaN checks for the not-a-number value. The string 'NaN' is not NaN.
func (a *Assertion) NaN() error {
	if err := a.halted(); err != nil {
		return err
	}
	return a.check(goja.IsNaN(a.actual), "be NaN", "", "")
}

// Infinity checks for an infinite number. sign > 0 wants Infinity, sign < 0
// wants -Infinity, zero accepts either.
func (a *Assertion) Infinity(sign int) error {
	if err := a.halted(); err != nil {
		return err
	}
	pass := a.realm.TypeOf(a.actual) == "number" && math.IsInf(a.actual.ToFloat(), sign)

	predicate := "be infinite"
	switch {
	case sign > 0:
		predicate = "be Infinity"
	case sign < 0:
		predicate = "be -Infinity"
	}
	return a.check(pass, predicate, "", "")
}

// Property checks that key resolves through the delegation chain and, when
// a value is given, that the resolved value is strictly equal to it.
func (a *Assertion) Property(key string, value ...interface{}) error {
	if err := a.halted(); err != nil {
		return err
	}
	res, found := a.realm.Lookup(a.actual, key)

	predicate := "have property " + a.realm.Display(a.realm.ToValue(key))
	pass := found
	expected := ""
	if len(value) > 0 {
		ev := a.realm.ToValue(value[0])
		expected = a.realm.Display(ev)
		predicate += " of"
		pass = found && res.Value.StrictEquals(ev)
	}
	return a.check(pass, predicate, expected, a.whereFound(res, found))
}

// OwnProperty checks that the value holds key directly, optionally with a
// strictly equal value.
func (a *Assertion) OwnProperty(key string, value ...interface{}) error {
	if err := a.halted(); err != nil {
		return err
	}
	own := a.realm.HasOwn(a.actual, key)
	res, found := a.realm.Lookup(a.actual, key)

	predicate := "have own property " + a.realm.Display(a.realm.ToValue(key))
	pass := own
	expected := ""
	if len(value) > 0 {
		ev := a.realm.ToValue(value[0])
		expected = a.realm.Display(ev)
		predicate += " of"
		pass = own && res.Value.StrictEquals(ev)
	}
	return a.check(pass, predicate, expected, a.whereFound(res, found))
}

func (a *Assertion) whereFound(res oracle.Resolution, found bool) string {
	switch {
	case !found:
		return "not found on the delegation chain"
	case res.Inherited():
		return fmt.Sprintf("inherited at depth %d with value %s", res.Depth, a.realm.Display(res.Value))
	default:
		return "own, with value " + a.realm.Display(res.Value)
	}
}

// Throw calls the actual value as a zero-argument function and checks that
// it raises. With a name, the raised error's name must match.
func (a *Assertion) Throw(name ...string) error {
	if err := a.halted(); err != nil {
		return err
	}
	fn, ok := goja.AssertFunction(a.actual)
	if !ok {
		return a.record(&Failure{
			Predicate: "be a function",
			Actual:    a.realm.Display(a.actual),
		})
	}

	_, err := a.realm.Call(fn)
	if errors.Is(err, oracle.ErrInterrupted) {
		return a.record(err)
	}

	expected := ""
	pass := err != nil
	if len(name) > 0 && name[0] != "" {
		expected = name[0]
		pass = pass && oracle.ErrorName(err) == name[0]
	}

	detail := "did not throw"
	if err != nil {
		detail = "threw " + err.Error()
	}
	return a.check(pass, "throw", expected, detail)
}

// Keys checks the names a for-in loop visits, own and inherited, against
// want as a set. Order is ignored.
func (a *Assertion) Keys(want ...string) error {
	if err := a.halted(); err != nil {
		return err
	}
	return a.checkSet("have keys", a.realm.Keys(a.actual), want)
}

// OwnKeys checks the own enumerable names against want as a set.
func (a *Assertion) OwnKeys(want ...string) error {
	if err := a.halted(); err != nil {
		return err
	}
	return a.checkSet("have own keys", a.realm.OwnKeys(a.actual), want)
}

func (a *Assertion) checkSet(predicate string, got, want []string) error {
	gotSet := toSet(got)
	wantSet := toSet(want)

	var missing, extra []string
	for k := range wantSet {
		if _, ok := gotSet[k]; !ok {
			missing = append(missing, k)
		}
	}
	for k := range gotSet {
		if _, ok := wantSet[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+quoteList(missing))
	}
	if len(extra) > 0 {
		parts = append(parts, "unexpected "+quoteList(extra))
	}

	pass := len(missing) == 0 && len(extra) == 0
	f := a.failure(pass, predicate, quoteList(sortedKeys(wantSet)), strings.Join(parts, ", "))
	if f == nil {
		return nil
	}
	f.Actual = quoteList(sortedKeys(gotSet))
	return a.record(f)
}

// check turns a predicate outcome into nil or a recorded *Failure.
func (a *Assertion) check(pass bool, predicate, expected, detail string) error {
	f := a.failure(pass, predicate, expected, detail)
	if f == nil {
		return nil
	}
	return a.record(f)
}

func (a *Assertion) failure(pass bool, predicate, expected, detail string) *Failure {
	if pass != a.negate {
		return nil
	}
	return &Failure{
		Predicate: predicate,
		Negated:   a.negate,
		Expected:  expected,
		Actual:    a.realm.Display(a.actual),
		Detail:    detail,
	}
}

func (a *Assertion) halted() error {
	if a.sink == nil {
		return nil
	}
	return a.sink.err
}

func (a *Assertion) record(err error) error {
	if a.sink != nil && a.sink.err == nil {
		a.sink.err = err
	}
	return err
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func quoteList(keys []string) string {
	if len(keys) == 0 {
		return "[]"
	}
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = "'" + k + "'"
	}
	return "[ " + strings.Join(quoted, ", ") + " ]"
}
