package arity

import (
	"fmt"
	"reflect"
	"sync"
)

// Arited is implemented by callables that know their own arity.
// Curried wrappers and match tables implement it so they can be passed
// anywhere a plain function is accepted.
type Arited interface {
	Arity() int
}

// Signature describes the parameters of an inspected callable.
type Signature struct {
	// Fixed is the number of declared positional parameters, excluding a
	// trailing variadic parameter.
	Fixed int

	// Variadic reports whether the callable captures trailing arguments.
	Variadic bool
}

// Arity returns the arity used for currying decisions.
// Variadic callables are always ready to fire.
func (s Signature) Arity() int {
	if s.Variadic {
		return 0
	}
	return s.Fixed
}

// Inspector computes and caches signatures of Go func types.
//
// Thread-safety: Inspector is safe for concurrent use.
type Inspector struct {
	cache sync.Map // reflect.Type -> Signature
}

// NewInspector creates an Inspector with an empty cache.
func NewInspector() *Inspector {
	return &Inspector{}
}

var defaultInspector = NewInspector()

// Of returns the currying arity of v using the default inspector.
func Of(v any) (int, error) {
	return defaultInspector.Of(v)
}

// Inspect returns the signature of v using the default inspector.
func Inspect(v any) (Signature, error) {
	return defaultInspector.Inspect(v)
}

// Of returns the currying arity of v.
func (in *Inspector) Of(v any) (int, error) {
	sig, err := in.Inspect(v)
	if err != nil {
		return 0, err
	}
	return sig.Arity(), nil
}

// Inspect returns the signature of v.
//
// Arited values are trusted verbatim and reported as non-variadic.
// Func values are reflected once per type.
func (in *Inspector) Inspect(v any) (Signature, error) {
	if v == nil {
		return Signature{}, &NonIntrospectableCallableError{Reason: "nil callable"}
	}

	if a, ok := v.(Arited); ok {
		n := a.Arity()
		if n < 0 {
			return Signature{}, &NonIntrospectableCallableError{
				Type:   fmt.Sprintf("%T", v),
				Reason: fmt.Sprintf("negative arity %d", n),
			}
		}
		return Signature{Fixed: n}, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func {
		return Signature{}, &NonIntrospectableCallableError{
			Type:   fmt.Sprintf("%T", v),
			Reason: "value is not a function and does not report its arity",
		}
	}
	if rv.IsNil() {
		return Signature{}, &NonIntrospectableCallableError{
			Type:   fmt.Sprintf("%T", v),
			Reason: "nil function",
		}
	}

	return in.signatureOf(rv.Type()), nil
}

// signatureOf returns the cached signature for a func type.
func (in *Inspector) signatureOf(t reflect.Type) Signature {
	if cached, ok := in.cache.Load(t); ok {
		return cached.(Signature)
	}

	sig := Signature{Fixed: t.NumIn(), Variadic: t.IsVariadic()}
	if sig.Variadic {
		sig.Fixed--
	}

	actual, _ := in.cache.LoadOrStore(t, sig)
	return actual.(Signature)
}

// cached reports whether a signature for t is already cached.
// Used for testing.
func (in *Inspector) cached(t reflect.Type) bool {
	_, ok := in.cache.Load(t)
	return ok
}
