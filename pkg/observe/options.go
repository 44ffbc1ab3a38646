package observe

// settings holds the construction-time configuration of a Property.
// It is fixed for the lifetime of the property.
type settings struct {
	alwaysNotify    bool
	includePrevious bool
	isolate         bool
}

// Option configures a Property at construction time.
type Option func(*settings)

// AlwaysNotify makes Set notify subscribers on every assignment, bypassing
// the equality check against the previous value.
func AlwaysNotify() Option {
	return func(s *settings) { s.alwaysNotify = true }
}

// IncludePrevious makes notifications carry the previous value alongside the
// new one. Subscribers must use the two-argument callback forms
// (FuncWithPrevious, or a two-argument method for Method callbacks); on the
// first notification the previous value is the zero value of T.
func IncludePrevious() Option {
	return func(s *settings) { s.includePrevious = true }
}

// IsolateFailures recovers panics raised by individual subscribers during
// notification, reports them through the errors package, and continues with
// the remaining subscribers. Without it, a panicking subscriber unwinds
// through Set and aborts the rest of the notification pass.
func IsolateFailures() Option {
	return func(s *settings) { s.isolate = true }
}
