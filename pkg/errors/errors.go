// Package errors provides structured error handling for the observe library.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindUsage indicates an invalid registration: a callback whose shape
	// does not match the property configuration, an unresolvable method
	// name, or a nil receiver.
	KindUsage
	// KindCallback indicates a subscriber failure recovered during an
	// isolated notification pass.
	KindCallback
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindCallback:
		return "callback"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ObserveError represents a structured error in the observe library.
type ObserveError struct {
	// Op is the operation that failed (e.g., "observe.Register").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error, when
	// captured.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ObserveError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ObserveError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked.
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Handler receives errors reported by the observe library.
type Handler interface {
	// HandleError is called when an error occurs.
	HandleError(err *ObserveError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
