package curry

import (
	"errors"
	"fmt"
)

// ArgumentError is returned when an argument cannot be passed to the
// target's declared parameter type.
//
// Go checks parameter types at the call boundary, so this is how a target
// rejecting an ill-typed argument surfaces. It is raised on the saturating
// call, never at wrap time.
type ArgumentError struct {
	// Position is the zero-based index of the offending argument.
	Position int

	// Expected is the declared parameter type.
	Expected string

	// Actual is the Go type of the supplied argument.
	Actual string

	// Reason overrides the type mismatch message (e.g. too few arguments).
	Reason string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("argument %d: %s", e.Position, e.Reason)
	}
	return fmt.Sprintf("argument %d: cannot use %s as %s", e.Position, e.Actual, e.Expected)
}

// IsArgumentError returns true if err is (or wraps) an ArgumentError.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}
