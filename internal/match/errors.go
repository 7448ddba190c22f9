package match

import (
	"errors"
	"fmt"
)

// IncompletePatternMatchError is returned when no clause matches a call.
// It always signals a gap in the clause table.
type IncompletePatternMatchError struct {
	// Table is the table name, empty for anonymous tables.
	Table string

	// Args is the number of arguments supplied.
	Args int

	// Candidates is the number of clauses that survived arity filtering.
	Candidates int
}

// Error implements the error interface.
func (e *IncompletePatternMatchError) Error() string {
	name := e.Table
	if name == "" {
		name = "<anonymous>"
	}
	if e.Candidates == 0 {
		return fmt.Sprintf("incomplete pattern match in %s: no clause takes %d argument(s)", name, e.Args)
	}
	return fmt.Sprintf("incomplete pattern match in %s: none of %d clause(s) matched %d argument(s)",
		name, e.Candidates, e.Args)
}

// ClauseArityError is returned when a clause's handler needs more
// arguments than the clause binds.
type ClauseArityError struct {
	Clause   int
	Patterns int
	Handler  int
}

// Error implements the error interface.
func (e *ClauseArityError) Error() string {
	return fmt.Sprintf("clause %d: handler takes %d argument(s) but clause binds %d",
		e.Clause, e.Handler, e.Patterns)
}

// IsIncompletePatternMatch returns true if err is (or wraps) an
// IncompletePatternMatchError.
func IsIncompletePatternMatch(err error) bool {
	var ie *IncompletePatternMatchError
	return errors.As(err, &ie)
}

// IsClauseArity returns true if err is (or wraps) a ClauseArityError.
func IsClauseArity(err error) bool {
	var ce *ClauseArityError
	return errors.As(err, &ce)
}
