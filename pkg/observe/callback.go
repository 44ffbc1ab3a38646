package observe

import (
	"fmt"
	"reflect"
	"weak"

	"github.com/go-drift/observe/pkg/errors"
)

// matchKind classifies how two callbacks relate for registration and
// unregistration purposes.
type matchKind int

const (
	// matchNone means the callbacks are unrelated.
	matchNone matchKind = iota
	// matchSame means the callbacks identify the same subscription.
	matchSame
	// matchReceiver means both are decomposed callbacks on the same receiver
	// but with different method names. Registration replaces the stored
	// method in place: a receiver observes a property through at most one
	// method at a time.
	matchReceiver
)

// Callback is a subscriber invoked when an observed value changes.
//
// Construct callbacks with Func, FuncWithPrevious, or Method. The interface
// is sealed; external implementations are not supported because registration
// matching relies on the concrete forms.
type Callback[T any] interface {
	// notify invokes the callback. It reports false when the callback has
	// gone stale (its receiver was collected) and should be pruned.
	notify(value, previous T, includePrevious bool) bool

	// validate checks the callback against the property configuration at
	// registration time.
	validate(includePrevious bool) error

	// match compares this callback against an already-registered one.
	match(other Callback[T]) matchKind

	// alive reports whether the callback can still be invoked.
	alive() bool
}

// Func wraps a plain function taking the new value.
//
// The returned Callback holds a strong reference to anything the function
// closes over. In particular a method value such as obj.Handle is an
// ordinary closure that keeps obj alive for as long as the subscription
// exists; use Method when the receiver's lifetime should stay decoupled
// from the subscription.
func Func[T any](fn func(value T)) Callback[T] {
	return &funcCallback[T]{fn: fn}
}

type funcCallback[T any] struct {
	fn func(T)
}

func (c *funcCallback[T]) notify(value, _ T, _ bool) bool {
	c.fn(value)
	return true
}

func (c *funcCallback[T]) validate(includePrevious bool) error {
	if c.fn == nil {
		return usageError("observe.Register", "callback function is nil")
	}
	if includePrevious {
		return usageError("observe.Register",
			"callback takes one argument but the property includes previous values; use FuncWithPrevious")
	}
	return nil
}

func (c *funcCallback[T]) match(other Callback[T]) matchKind {
	if o, ok := other.(*funcCallback[T]); ok && o == c {
		return matchSame
	}
	return matchNone
}

func (c *funcCallback[T]) alive() bool { return true }

// FuncWithPrevious wraps a function taking the new value and the previous
// one. It is only valid on properties constructed with IncludePrevious.
func FuncWithPrevious[T any](fn func(value, previous T)) Callback[T] {
	return &funcPrevCallback[T]{fn: fn}
}

type funcPrevCallback[T any] struct {
	fn func(T, T)
}

func (c *funcPrevCallback[T]) notify(value, previous T, _ bool) bool {
	c.fn(value, previous)
	return true
}

func (c *funcPrevCallback[T]) validate(includePrevious bool) error {
	if c.fn == nil {
		return usageError("observe.Register", "callback function is nil")
	}
	if !includePrevious {
		return usageError("observe.Register",
			"callback takes a previous value but the property does not include one; use Func")
	}
	return nil
}

func (c *funcPrevCallback[T]) match(other Callback[T]) matchKind {
	if o, ok := other.(*funcPrevCallback[T]); ok && o == c {
		return matchSame
	}
	return matchNone
}

func (c *funcPrevCallback[T]) alive() bool { return true }

// Method builds a decomposed callback from a receiver and a method name.
//
// Only a weak reference to the receiver is retained; the method is looked up
// by name each time a notification fires. When the receiver is collected,
// the subscription is silently dropped on the next notification, no explicit
// Unregister required.
//
// The named method must be exported and accept exactly the configured
// notification arguments: (value T), or (value, previous T) on properties
// with IncludePrevious. Registration fails with a usage error otherwise.
//
// The receiver type is inferred, so only the value type needs naming:
//
//	status.Register(job, observe.Method[string](display, "Show"))
func Method[T any, R any](receiver *R, name string) Callback[T] {
	c := &methodCallback[T, R]{name: name}
	if receiver != nil {
		c.ref = weak.Make(receiver)
	}
	return c
}

type methodCallback[T any, R any] struct {
	ref  weak.Pointer[R]
	name string
}

func (c *methodCallback[T, R]) notify(value, previous T, includePrevious bool) bool {
	r := c.ref.Value()
	if r == nil {
		return false
	}
	m := reflect.ValueOf(r).MethodByName(c.name)
	if !m.IsValid() {
		return false
	}
	mt := m.Type()
	args := make([]reflect.Value, 0, 2)
	args = append(args, argValue(value, mt.In(0)))
	if includePrevious {
		args = append(args, argValue(previous, mt.In(1)))
	}
	m.Call(args)
	return true
}

func (c *methodCallback[T, R]) validate(includePrevious bool) error {
	r := c.ref.Value()
	if r == nil {
		return usageError("observe.Register", "method callback receiver is nil or already collected")
	}
	m := reflect.ValueOf(r).MethodByName(c.name)
	if !m.IsValid() {
		return usageError("observe.Register",
			fmt.Sprintf("type %T has no method %q", r, c.name))
	}
	mt := m.Type()
	want := 1
	if includePrevious {
		want = 2
	}
	if mt.NumIn() != want || mt.IsVariadic() {
		return usageError("observe.Register",
			fmt.Sprintf("method %T.%s must take exactly %d argument(s) of %v", r, c.name, want, reflect.TypeFor[T]()))
	}
	vt := reflect.TypeFor[T]()
	for i := 0; i < want; i++ {
		if !vt.AssignableTo(mt.In(i)) {
			return usageError("observe.Register",
				fmt.Sprintf("method %T.%s argument %d must accept %v, has %v", r, c.name, i, vt, mt.In(i)))
		}
	}
	return nil
}

func (c *methodCallback[T, R]) match(other Callback[T]) matchKind {
	o, ok := other.(*methodCallback[T, R])
	if !ok || o.ref != c.ref {
		return matchNone
	}
	if o.name == c.name {
		return matchSame
	}
	return matchReceiver
}

func (c *methodCallback[T, R]) alive() bool {
	return c.ref.Value() != nil
}

// argValue converts a notification argument for a reflective method call.
// A nil interface value has no reflect representation of its own, so it is
// replaced with the zero value of the parameter type.
func argValue[T any](v T, want reflect.Type) reflect.Value {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return reflect.Zero(want)
	}
	return rv
}

func usageError(op, msg string) error {
	return &errors.ObserveError{
		Op:   op,
		Kind: errors.KindUsage,
		Err:  fmt.Errorf("%s", msg),
	}
}
