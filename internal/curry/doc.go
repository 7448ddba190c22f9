// Package curry turns fixed-arity callables into automatically curried
// wrappers.
//
// A *Curried accumulates arguments until the target's arity is reached,
// then fires the target with exactly that many arguments:
//
//	add, _ := curry.New(func(a, b int) int { return a + b })
//	inc, _ := add.Call(1)        // *Curried awaiting one more argument
//	two, _ := inc.(*curry.Curried).Call(1)
//	three, _ := add.Call(1, 2)   // fires immediately
//
// Wrappers are immutable. Applying arguments to a partially applied
// wrapper returns a new wrapper and leaves the original untouched, so a
// partial application can be stored and reused with different remaining
// arguments without cross-talk.
//
// Saturation rules:
//   - Arity 0 fires immediately on every call and forwards all arguments.
//   - Arity 1 returns itself when called with no arguments; otherwise it
//     fires with the first argument.
//   - Arity N >= 2 fires once N arguments have accumulated. Surplus
//     arguments beyond N are dropped.
//
// The only failure raised by the engine itself is
// arity.NonIntrospectableCallableError, at wrap time. Errors and panics
// raised by the target propagate unchanged.
package curry
