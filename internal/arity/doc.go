// Package arity determines how many arguments a callable needs before it
// can fire (its saturation point).
//
// Arity is decided once per distinct callable, never per call:
//   - Values implementing Arited report their own arity.
//   - Go func values are inspected by reflection. The result is cached per
//     reflect.Type, so every func of the same signature costs one lookup.
//   - Variadic funcs report arity 0. Currying is a no-op for them and they
//     fire immediately with whatever arguments arrive. Signature still
//     records the fixed parameter count for callers that need it.
//
// Anything else fails with *NonIntrospectableCallableError. Callers that
// know the arity of an opaque callable supply it explicitly instead (see
// curry.WithArity).
package arity
