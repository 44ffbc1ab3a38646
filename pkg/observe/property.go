package observe

import (
	"reflect"
	"runtime"
	"sync"
	"weak"

	"github.com/go-drift/observe/pkg/errors"
)

// Property is a shared observable-property descriptor.
//
// One Property value serves every instance of the owning type O: each owner
// gets its own current value and subscriber list, keyed by a weak reference
// to the owner. When an owner becomes unreachable its state is dropped
// automatically, so a package-level Property never leaks owners. One caveat:
// owner types should carry at least one pointer field, since small
// pointer-free objects are batch-allocated by the runtime and their weak
// entries are only cleared once every object sharing the block is dead.
//
// Reads and writes go through Get/Lookup and Set; subscriptions through
// Register and Unregister (or the Register/Unregister helper values).
// Notification runs synchronously on the goroutine calling Set.
type Property[O any, T any] struct {
	cfg   settings
	equal func(a, b T) bool

	mu     sync.Mutex
	owners map[weak.Pointer[O]]*ownerState[T]
}

// ownerState is the per-owner slot: the stored value, whether it has ever
// been assigned, and the subscribers in registration order.
type ownerState[T any] struct {
	value    T
	hasValue bool
	subs     []Callback[T]
}

// New creates a property whose change detection uses ==.
func New[O any, T comparable](opts ...Option) *Property[O, T] {
	return NewWithEquality[O](func(a, b T) bool { return a == b }, opts...)
}

// NewWithEquality creates a property with a custom equality function, for
// value types that are not comparable or that should suppress notifications
// under a looser notion of sameness. A nil equal falls back to
// reflect.DeepEqual.
func NewWithEquality[O any, T any](equal func(a, b T) bool, opts ...Option) *Property[O, T] {
	if equal == nil {
		equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	p := &Property[O, T]{
		equal:  equal,
		owners: make(map[weak.Pointer[O]]*ownerState[T]),
	}
	for _, opt := range opts {
		opt(&p.cfg)
	}
	return p
}

// Get returns the current value for owner, or the zero value of T if the
// property has never been assigned on this owner.
func (p *Property[O, T]) Get(owner *O) T {
	v, _ := p.Lookup(owner)
	return v
}

// Lookup returns the current value for owner and whether the property has
// been assigned on this owner at least once.
func (p *Property[O, T]) Lookup(owner *O) (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.owners[weak.Make(owner)]; ok && st.hasValue {
		return st.value, true
	}
	var zero T
	return zero, false
}

// Set assigns value to the property on owner and notifies subscribers when
// the value changed (or unconditionally with AlwaysNotify). The first
// assignment always counts as a change: the unset state is unequal to every
// real value. Subscribers run in registration order on the calling
// goroutine; decomposed callbacks whose receiver has been collected are
// skipped and removed.
func (p *Property[O, T]) Set(owner *O, value T) {
	p.mu.Lock()
	st := p.state(owner)
	previous, had := st.value, st.hasValue
	st.value = value
	st.hasValue = true
	if !p.cfg.alwaysNotify && had && p.equal(value, previous) {
		p.mu.Unlock()
		return
	}
	subs := make([]Callback[T], len(st.subs))
	copy(subs, st.subs)
	p.mu.Unlock()

	var stale []Callback[T]
	for _, cb := range subs {
		if !p.invoke(cb, value, previous) {
			stale = append(stale, cb)
		}
	}
	if len(stale) > 0 {
		p.prune(owner, stale)
	}
}

// invoke runs a single callback and reports whether it is still live.
// With IsolateFailures a panicking callback is recovered and reported
// instead of unwinding through Set.
func (p *Property[O, T]) invoke(cb Callback[T], value, previous T) (live bool) {
	if p.cfg.isolate {
		defer func() {
			if r := recover(); r != nil {
				live = true
				errors.Report(&errors.ObserveError{
					Op:         "observe.Set",
					Kind:       errors.KindCallback,
					Err:        &errors.PanicError{Value: r},
					StackTrace: errors.CaptureStack(),
				})
			}
		}()
	}
	return cb.notify(value, previous, p.cfg.includePrevious)
}

// Register adds a callback to owner's subscriber list.
//
// The callback is validated against the property configuration; mismatches
// (wrong argument shape, unknown method, nil receiver) return a KindUsage
// error. Registration is idempotent: a callback matching an existing entry
// is not added again and the original position is kept. A decomposed
// callback on an already-registered receiver but with a different method
// name replaces the stored method in place, so each receiver observes a
// property through at most one method.
func (p *Property[O, T]) Register(owner *O, cb Callback[T]) error {
	if cb == nil {
		return usageError("observe.Register", "callback is nil")
	}
	if err := cb.validate(p.cfg.includePrevious); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state(owner)
	for i, existing := range st.subs {
		switch cb.match(existing) {
		case matchSame:
			return nil
		case matchReceiver:
			st.subs[i] = cb
			return nil
		}
	}
	st.subs = append(st.subs, cb)
	return nil
}

// Unregister removes a callback from owner's subscriber list. Function
// callbacks match by the identity of the Callback value; decomposed
// callbacks match by receiver identity plus method name, so a fresh
// Method(r, "Name") value removes an earlier registration. Unregistering a
// callback that is not registered is a no-op.
func (p *Property[O, T]) Unregister(owner *O, cb Callback[T]) {
	if cb == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.owners[weak.Make(owner)]
	if !ok {
		return
	}
	for i, existing := range st.subs {
		if cb.match(existing) == matchSame {
			st.subs = append(st.subs[:i], st.subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of live subscribers for owner, removing
// decomposed callbacks whose receiver has been collected.
func (p *Property[O, T]) Subscribers(owner *O) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.owners[weak.Make(owner)]
	if !ok {
		return 0
	}
	live := st.subs[:0]
	for _, cb := range st.subs {
		if cb.alive() {
			live = append(live, cb)
		}
	}
	st.subs = live
	return len(live)
}

// state returns the owner's slot, creating it on first use. The cleanup
// registered here removes the slot once the owner becomes unreachable.
// Callers must hold p.mu.
func (p *Property[O, T]) state(owner *O) *ownerState[T] {
	ref := weak.Make(owner)
	st, ok := p.owners[ref]
	if !ok {
		st = &ownerState[T]{}
		p.owners[ref] = st
		runtime.AddCleanup(owner, p.dropOwner, ref)
	}
	return st
}

func (p *Property[O, T]) dropOwner(ref weak.Pointer[O]) {
	p.mu.Lock()
	delete(p.owners, ref)
	p.mu.Unlock()
}

// prune removes callbacks that went stale during a notification pass.
func (p *Property[O, T]) prune(owner *O, stale []Callback[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.owners[weak.Make(owner)]
	if !ok {
		return
	}
	kept := st.subs[:0]
	for _, cb := range st.subs {
		dead := false
		for _, s := range stale {
			if cb == s {
				dead = true
				break
			}
		}
		if !dead {
			kept = append(kept, cb)
		}
	}
	st.subs = kept
}
