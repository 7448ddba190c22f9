// Package logic provides boolean operators and predicate combinators for
// the standard catalog.
package logic

import (
	"fmt"

	"github.com/roach88/vector/internal/curry"
	"github.com/roach88/vector/internal/pattern"
	"github.com/roach88/vector/internal/registry"
)

// Name is the module name used in qualified names.
const Name = "logic"

// Module returns the module's definitions.
func Module() []registry.Definition {
	return []registry.Definition{
		registry.Def("not", Not).WithDoc("Bool -> Bool"),
		registry.Def("and", And).WithDoc("Bool -> Bool -> Bool"),
		registry.Def("or", Or).WithDoc("Bool -> Bool -> Bool"),
		registry.Def("logicalOr", LogicalOr).WithDoc("(a -> Bool) -> (a -> Bool) -> a -> Bool"),
		registry.Def("logicalAnd", LogicalAnd).WithDoc("(a -> Bool) -> (a -> Bool) -> a -> Bool"),
		registry.Def("eqStrict", EqStrict).WithDoc("a -> a -> Bool"),
		registry.Def("all", All).WithDoc("[a -> Bool] -> a -> Bool"),
		registry.Def("any", Any).WithDoc("[a -> Bool] -> a -> Bool"),
	}
}

// Not negates b.
func Not(b bool) bool {
	return !b
}

// And is a && b.
func And(a, b bool) bool {
	return a && b
}

// Or is a || b.
func Or(a, b bool) bool {
	return a || b
}

// EqStrict compares a and b without coercion.
func EqStrict(a, b any) bool {
	return pattern.StrictEqual(a, b)
}

// LogicalOr returns a predicate true when f or g holds for its argument.
// g is not called when f holds.
func LogicalOr(f, g any) (*curry.Curried, error) {
	return Any([]any{f, g})
}

// LogicalAnd returns a predicate true when f and g both hold.
// g is not called when f fails.
func LogicalAnd(f, g any) (*curry.Curried, error) {
	return All([]any{f, g})
}

// All returns a predicate true when every predicate in fs holds.
func All(fs []any) (*curry.Curried, error) {
	return combine("all", fs, false)
}

// Any returns a predicate true when some predicate in fs holds.
func Any(fs []any) (*curry.Curried, error) {
	return combine("any", fs, true)
}

// combine builds a unary predicate that stops at the first predicate
// returning stop.
func combine(name string, fs []any, stop bool) (*curry.Curried, error) {
	for i, f := range fs {
		if !curry.IsCallable(f) {
			return nil, fmt.Errorf("%s: predicate %d (%T) is not callable", name, i, f)
		}
	}
	preds := append([]any(nil), fs...)

	return curry.New(curry.Func(func(args ...any) (any, error) {
		for _, f := range preds {
			ok, err := test(f, args[0])
			if err != nil {
				return nil, err
			}
			if ok == stop {
				return stop, nil
			}
		}
		return !stop, nil
	}), curry.WithArity(1), curry.WithName(name))
}

// test runs predicate f on x and requires a bool result.
func test(f, x any) (bool, error) {
	out, err := curry.Invoke(f, x)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, &pattern.PredicateResultError{Predicate: fmt.Sprintf("%T", f), Result: fmt.Sprintf("%T", out)}
	}
	return b, nil
}
