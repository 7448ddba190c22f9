// Package pattern compiles raw pattern values into reusable argument tests.
//
// The kind of a pattern is decided once, from the shape of the raw value:
//
//	pattern.Any             wildcard, matches everything
//	5, "x", true, 1.5       literal, strict equality
//	[]any{1, 2}, map...     literal, deep strict equality
//	pattern.Type("int")     type tag, runtime kind check
//	pattern.Just(p)         nested, a boxed value whose content matches p
//	func(any) bool          predicate, called with the argument
//
// Any other callable (a Go func, a curry.Callable, a curried wrapper) is
// also used as a predicate and must return a bool.
//
// Strict equality never coerces across classes: the integer 1 and the
// float 1.0 are different values, as are 1 and "1". Integer widths are
// not a class of their own, so int(1) equals int64(1).
package pattern
