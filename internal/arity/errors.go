package arity

import (
	"errors"
	"fmt"
)

// NonIntrospectableCallableError is returned when the arity of a callable
// cannot be determined.
//
// It is raised at wrap time, never at call time. Supplying an explicit
// arity bypasses inspection entirely.
type NonIntrospectableCallableError struct {
	// Type is the Go type of the rejected value (empty for nil).
	Type string

	// Reason explains why inspection failed.
	Reason string
}

// Error implements the error interface.
func (e *NonIntrospectableCallableError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("cannot determine arity of %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("cannot determine arity: %s", e.Reason)
}

// IsNonIntrospectable returns true if err is (or wraps) a
// NonIntrospectableCallableError.
func IsNonIntrospectable(err error) bool {
	var ne *NonIntrospectableCallableError
	return errors.As(err, &ne)
}
