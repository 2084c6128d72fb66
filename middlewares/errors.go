package middlewares

import (
	"errors"
	"fmt"
)

// PanicError is the cause attached to the 500 response written by Recover.
type PanicError struct {
	Value  any
	Method string
	Path   string
	Stack  []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("panic: %v", e.Value)
	}
	return fmt.Sprintf("panic in %s %s: %v", e.Method, e.Path, e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// AsPanicError reports whether err wraps a recovered panic.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if !errors.As(err, &pe) {
		return nil, false
	}
	return pe, true
}
