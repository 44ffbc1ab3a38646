package observe_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/go-drift/observe/pkg/errors"
	"github.com/go-drift/observe/pkg/observe"
)

// host is the owning type used across the tests.
type host struct {
	name string
}

func TestSetNotifiesOnChange(t *testing.T) {
	prop := observe.New[host, int]()
	h := &host{name: "a"}

	var calls []int
	require.NoError(t, prop.Register(h, observe.Func(func(v int) {
		calls = append(calls, v)
	})))

	prop.Set(h, 1)
	prop.Set(h, 2)
	prop.Set(h, 2)
	prop.Set(h, 3)

	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestSetSuppressesEqualValue(t *testing.T) {
	prop := observe.New[host, string]()
	h := &host{}

	calls := 0
	require.NoError(t, prop.Register(h, observe.Func(func(string) { calls++ })))

	prop.Set(h, "on")
	prop.Set(h, "on")

	assert.Equal(t, 1, calls)
	assert.Equal(t, "on", prop.Get(h))
}

func TestFirstAssignmentNotifies(t *testing.T) {
	// The unset state must compare unequal to every real value, including
	// the zero value of T.
	prop := observe.New[host, int]()
	h := &host{}

	calls := 0
	require.NoError(t, prop.Register(h, observe.Func(func(int) { calls++ })))

	prop.Set(h, 0)

	assert.Equal(t, 1, calls, "assigning the zero value on an unset property should notify")

	prop.Set(h, 0)
	assert.Equal(t, 1, calls, "repeating the value should not notify")
}

func TestAlwaysNotify(t *testing.T) {
	prop := observe.New[host, int](observe.AlwaysNotify())
	h := &host{}

	calls := 0
	require.NoError(t, prop.Register(h, observe.Func(func(int) { calls++ })))

	prop.Set(h, 7)
	prop.Set(h, 7)
	prop.Set(h, 7)

	assert.Equal(t, 3, calls)
}

func TestIncludePrevious(t *testing.T) {
	prop := observe.New[host, int](observe.AlwaysNotify(), observe.IncludePrevious())
	h := &host{}

	var pairs [][2]int
	require.NoError(t, prop.Register(h, observe.FuncWithPrevious(func(v, prev int) {
		pairs = append(pairs, [2]int{v, prev})
	})))

	prop.Set(h, 5)
	prop.Set(h, 5)
	prop.Set(h, 9)

	assert.Equal(t, [][2]int{{5, 0}, {5, 5}, {9, 5}}, pairs)
}

func TestRegistrationOrderPreserved(t *testing.T) {
	prop := observe.New[host, int]()
	h := &host{}

	var order []string
	require.NoError(t, prop.Register(h, observe.Func(func(int) { order = append(order, "first") })))
	require.NoError(t, prop.Register(h, observe.Func(func(int) { order = append(order, "second") })))
	require.NoError(t, prop.Register(h, observe.Func(func(int) { order = append(order, "third") })))

	prop.Set(h, 1)

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	prop := observe.New[host, int]()
	h := &host{}

	var a, b []int
	cbA := observe.Func(func(v int) { a = append(a, v) })
	cbB := observe.Func(func(v int) { b = append(b, v) })
	require.NoError(t, prop.Register(h, cbA))
	require.NoError(t, prop.Register(h, cbB))

	prop.Set(h, 1)
	prop.Unregister(h, cbA)
	prop.Set(h, 2)

	assert.Equal(t, []int{1}, a)
	assert.Equal(t, []int{1, 2}, b)
	assert.Equal(t, 1, prop.Subscribers(h))
}

func TestUnregisterMissIsNoOp(t *testing.T) {
	prop := observe.New[host, int]()
	h := &host{}

	assert.NotPanics(t, func() {
		prop.Unregister(h, observe.Func(func(int) {}))
	})

	cb := observe.Func(func(int) {})
	require.NoError(t, prop.Register(h, cb))
	prop.Unregister(h, cb)
	prop.Unregister(h, cb)

	assert.Equal(t, 0, prop.Subscribers(h))
}

func TestRegisterIsIdempotent(t *testing.T) {
	prop := observe.New[host, int]()
	h := &host{}

	calls := 0
	cb := observe.Func(func(int) { calls++ })
	require.NoError(t, prop.Register(h, cb))
	require.NoError(t, prop.Register(h, cb))

	prop.Set(h, 1)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, prop.Subscribers(h))
}

func TestDistinctWrappersAreDistinctSubscriptions(t *testing.T) {
	// Two Func values wrapping the same function are separate subscriptions;
	// identity lives on the Callback value, not the wrapped function.
	prop := observe.New[host, int]()
	h := &host{}

	calls := 0
	fn := func(int) { calls++ }
	require.NoError(t, prop.Register(h, observe.Func(fn)))
	require.NoError(t, prop.Register(h, observe.Func(fn)))

	prop.Set(h, 1)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, prop.Subscribers(h))
}

func TestOwnersAreIndependent(t *testing.T) {
	prop := observe.New[host, int]()
	a := &host{name: "a"}
	b := &host{name: "b"}

	var aCalls, bCalls []int
	require.NoError(t, prop.Register(a, observe.Func(func(v int) { aCalls = append(aCalls, v) })))
	require.NoError(t, prop.Register(b, observe.Func(func(v int) { bCalls = append(bCalls, v) })))

	prop.Set(a, 1)
	prop.Set(b, 2)
	prop.Set(a, 3)

	assert.Equal(t, []int{1, 3}, aCalls)
	assert.Equal(t, []int{2}, bCalls)
	assert.Equal(t, 3, prop.Get(a))
	assert.Equal(t, 2, prop.Get(b))
}

func TestLookupReportsUnset(t *testing.T) {
	prop := observe.New[host, int]()
	h := &host{}

	v, ok := prop.Lookup(h)
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.Zero(t, prop.Get(h))

	prop.Set(h, 42)

	v, ok = prop.Lookup(h)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestCustomEquality(t *testing.T) {
	type user struct {
		ID   int
		Name string
	}
	prop := observe.NewWithEquality[host](func(a, b user) bool { return a.ID == b.ID })
	h := &host{}

	var seen []string
	require.NoError(t, prop.Register(h, observe.Func(func(u user) { seen = append(seen, u.Name) })))

	prop.Set(h, user{ID: 1, Name: "Alice"})
	prop.Set(h, user{ID: 1, Name: "Alice Updated"})
	prop.Set(h, user{ID: 2, Name: "Bob"})

	assert.Equal(t, []string{"Alice", "Bob"}, seen)
}

func TestNilEqualityFallsBackToDeepEqual(t *testing.T) {
	prop := observe.NewWithEquality[host, []int](nil)
	h := &host{}

	calls := 0
	require.NoError(t, prop.Register(h, observe.Func(func([]int) { calls++ })))

	prop.Set(h, []int{1, 2})
	prop.Set(h, []int{1, 2})
	prop.Set(h, []int{1, 2, 3})

	assert.Equal(t, 2, calls)
}

func TestRegisterNilCallback(t *testing.T) {
	prop := observe.New[host, int]()
	h := &host{}

	err := prop.Register(h, nil)

	var oe *oerrors.ObserveError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, oerrors.KindUsage, oe.Kind)
}

func TestCallbackPanicPropagatesAndAborts(t *testing.T) {
	prop := observe.New[host, int]()
	h := &host{}

	secondCalled := false
	require.NoError(t, prop.Register(h, observe.Func(func(int) { panic("bad subscriber") })))
	require.NoError(t, prop.Register(h, observe.Func(func(int) { secondCalled = true })))

	assert.PanicsWithValue(t, "bad subscriber", func() { prop.Set(h, 1) })
	assert.False(t, secondCalled, "remaining subscribers must not run after a panic")
	assert.Equal(t, 1, prop.Get(h), "the value is stored before notification")
}

func TestIsolateFailures(t *testing.T) {
	rec := &recordingHandler{}
	oerrors.SetHandler(rec)
	defer oerrors.SetHandler(nil)

	prop := observe.New[host, int](observe.IsolateFailures())
	h := &host{}

	var calls []int
	require.NoError(t, prop.Register(h, observe.Func(func(int) { panic("bad subscriber") })))
	require.NoError(t, prop.Register(h, observe.Func(func(v int) { calls = append(calls, v) })))

	assert.NotPanics(t, func() { prop.Set(h, 1) })

	assert.Equal(t, []int{1}, calls, "later subscribers still run")
	require.Len(t, rec.errs, 1)
	assert.Equal(t, oerrors.KindCallback, rec.errs[0].Kind)
	assert.Contains(t, rec.errs[0].Err.Error(), "bad subscriber")

	// The recovered panic is preserved as the structured inner error.
	var pe *oerrors.PanicError
	require.True(t, errors.As(rec.errs[0], &pe))
	assert.Equal(t, "bad subscriber", pe.Value)

	// The panicking subscriber stays registered; isolation is not pruning.
	assert.Equal(t, 2, prop.Subscribers(h))
}

// recordingHandler captures errors reported through the global handler.
type recordingHandler struct {
	errs   []*oerrors.ObserveError
	panics []*oerrors.PanicError
}

func (h *recordingHandler) HandleError(err *oerrors.ObserveError) { h.errs = append(h.errs, err) }
func (h *recordingHandler) HandlePanic(err *oerrors.PanicError)   { h.panics = append(h.panics, err) }

func TestSharedPropertyManyOwners(t *testing.T) {
	prop := observe.New[host, int]()

	owners := make([]*host, 10)
	counts := make([]int, 10)
	for i := range owners {
		owners[i] = &host{}
		require.NoError(t, prop.Register(owners[i], observe.Func(func(int) { counts[i]++ })))
	}

	for i, h := range owners {
		prop.Set(h, i)
	}
	prop.Set(owners[3], 100)

	for i, c := range counts {
		want := 1
		if i == 3 {
			want = 2
		}
		assert.Equal(t, want, c, "owner %d", i)
	}
	runtime.KeepAlive(owners)
}

func TestErrorsAreStructured(t *testing.T) {
	prop := observe.New[host, int](observe.IncludePrevious())
	h := &host{}

	err := prop.Register(h, observe.Func(func(int) {}))

	require.Error(t, err)
	var oe *oerrors.ObserveError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "observe.Register", oe.Op)
	assert.Equal(t, oerrors.KindUsage, oe.Kind)
}
