package observe

// Register is a thin callable bound to one Property that forwards
// registration for a given owner. It exists so a host type can expose
// subscription management as an ordinary attribute next to the property
// itself:
//
//	var (
//	    status         = observe.New[Job, string]()
//	    onStatus       = observe.NewRegister(status)
//	    offStatus      = observe.NewUnregister(status)
//	)
//
//	onStatus.Call(job, observe.Func(handle))
//
// Register values are stateless and safe to copy.
type Register[O any, T any] struct {
	prop *Property[O, T]
}

// NewRegister creates a Register bound to p.
func NewRegister[O any, T any](p *Property[O, T]) Register[O, T] {
	return Register[O, T]{prop: p}
}

// Call registers cb as a subscriber of the bound property on owner.
func (r Register[O, T]) Call(owner *O, cb Callback[T]) error {
	return r.prop.Register(owner, cb)
}

// Unregister is the removal counterpart of Register: a thin callable bound
// to one Property that forwards unregistration for a given owner.
type Unregister[O any, T any] struct {
	prop *Property[O, T]
}

// NewUnregister creates an Unregister bound to p.
func NewUnregister[O any, T any](p *Property[O, T]) Unregister[O, T] {
	return Unregister[O, T]{prop: p}
}

// Call removes cb from the bound property's subscribers on owner.
// Removing a callback that is not registered is a no-op.
func (u Unregister[O, T]) Call(owner *O, cb Callback[T]) {
	u.prop.Unregister(owner, cb)
}
