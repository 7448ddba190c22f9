// Package match implements multi-clause dispatch by argument shape and
// value.
//
// A Table holds clauses in declaration order. Calling it runs a small
// state machine:
//
//	Filtering  keep clauses whose pattern count equals the argument count
//	Testing    try survivors in declaration order, first full match wins
//	Matched    call the handler with the bound arguments
//	Exhausted  fail with *IncompletePatternMatchError
//
// Declaration order is the only tie-break. In
//
//	match.MustMatch(
//		[]any{pattern.Any, h1},
//		[]any{3, h2},
//	)
//
// a call with 3 selects h1.
//
// A Table reports arity 0, so it can be curried, registered or used as a
// handler of another table.
package match
