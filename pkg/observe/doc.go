// Package observe implements observable properties: shared descriptors that
// hold a value per owning instance and notify registered subscribers when
// the value changes.
//
// A Property is declared once, typically at package level, and attached to a
// host type. Each host instance gets its own independent value and subscriber
// list, keyed by a weak reference to the instance so that the property never
// extends the instance's lifetime.
//
//	type Thermostat struct{ Room string }
//
//	var (
//	    temperature      = observe.New[Thermostat, float64]()
//	    onTemperature    = observe.NewRegister(temperature)
//	    offTemperature   = observe.NewUnregister(temperature)
//	)
//
//	t := &Thermostat{Room: "kitchen"}
//	onTemperature.Call(t, observe.Func(func(v float64) {
//	    fmt.Println("now", v)
//	}))
//	temperature.Set(t, 21.5) // prints "now 21.5"
//	temperature.Set(t, 21.5) // no output, value unchanged
//
// # Notification
//
// Set notifies subscribers in registration order, synchronously on the
// caller's goroutine, when the new value differs from the previous one under
// the property's equality. The AlwaysNotify option bypasses the equality
// check. The first assignment counts as a change: the unset state compares
// unequal to every real value.
//
// With the IncludePrevious option, subscribers receive the previous value as
// a second argument; on the first notification the previous value is the
// zero value of T.
//
// # Callbacks
//
// Three callback forms exist. Func wraps a plain function and holds a strong
// reference to whatever the closure captures. Method stores a weak reference
// to a receiver plus a method name and re-binds the method at notification
// time; a collected receiver silently drops its subscription. FuncWithPrevious
// is the two-argument form for properties with IncludePrevious.
//
// # Failure policy
//
// A panicking subscriber unwinds through Set and aborts the remaining
// notifications. The IsolateFailures option instead recovers per callback,
// reports through the errors package, and continues.
//
// # Constructor Conventions
//
// Properties use NewX() constructors returning pointers, mirroring the
// convention for long-lived mutable objects; Register and Unregister helpers
// are small immutable values created with NewRegister and NewUnregister.
package observe
