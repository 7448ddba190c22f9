package pattern

import (
	"errors"
	"fmt"
)

// UnknownTagError is returned for a type pattern naming an unknown kind.
type UnknownTagError struct {
	Tag string
}

// Error implements the error interface.
func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown type tag %q", e.Tag)
}

// PredicateResultError is returned when a callable used as a predicate
// produces something other than a bool.
type PredicateResultError struct {
	Predicate string
	Result    string
}

// Error implements the error interface.
func (e *PredicateResultError) Error() string {
	return fmt.Sprintf("predicate %s returned %s, want bool", e.Predicate, e.Result)
}

// IsUnknownTag returns true if err is (or wraps) an UnknownTagError.
func IsUnknownTag(err error) bool {
	var ue *UnknownTagError
	return errors.As(err, &ue)
}
