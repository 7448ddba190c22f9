// Package lambda provides function combinators for the standard catalog.
package lambda

import (
	"github.com/roach88/vector/internal/curry"
	"github.com/roach88/vector/internal/registry"
)

// Name is the module name used in qualified names.
const Name = "lambda"

// Module returns the module's definitions.
func Module() []registry.Definition {
	return []registry.Definition{
		registry.Def("id", ID).WithDoc("a -> a"),
		registry.Def("k", K).WithDoc("a -> (* -> a)"),
		registry.Def("pipe", Pipe).WithDoc("(f, g, ...) -> (*args -> ...g(f(*args)))"),
		registry.Def("compose", Compose).WithDoc("(..., g, f) -> (*args -> ...g(f(*args)))"),
		registry.Def("flip", Flip).WithDoc("(a -> b -> c) -> b -> a -> c"),
		registry.Def("apply", Apply).WithDoc("(a -> b) -> a -> b"),
	}
}

// ID returns its argument.
func ID(a any) any {
	return a
}

// K returns a callable that ignores its arguments and returns a.
func K(a any) curry.Func {
	return func(...any) (any, error) {
		return a, nil
	}
}

// Pipe composes fs left to right. The first function receives every
// argument; each later one receives the previous result.
// Pipe with no functions is the identity on its first argument.
func Pipe(fs ...any) curry.Func {
	return func(args ...any) (any, error) {
		if len(fs) == 0 {
			if len(args) == 0 {
				return nil, nil
			}
			return args[0], nil
		}

		carry, err := curry.Invoke(fs[0], args...)
		if err != nil {
			return nil, err
		}
		for _, f := range fs[1:] {
			carry, err = curry.Invoke(f, carry)
			if err != nil {
				return nil, err
			}
		}
		return carry, nil
	}
}

// Compose composes fs right to left.
func Compose(fs ...any) curry.Func {
	rev := make([]any, len(fs))
	for i, f := range fs {
		rev[len(fs)-1-i] = f
	}
	return Pipe(rev...)
}

// Flip returns a binary curried callable applying f with its first two
// arguments swapped.
func Flip(f any) (*curry.Curried, error) {
	return curry.New(curry.Func(func(args ...any) (any, error) {
		return curry.Invoke(f, args[1], args[0])
	}), curry.WithArity(2), curry.WithName("flip"))
}

// Apply calls f with a.
func Apply(f, a any) (any, error) {
	return curry.Invoke(f, a)
}
