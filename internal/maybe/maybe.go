// Package maybe provides the boxed optional value unwrapped by nested
// patterns.
package maybe

import "fmt"

// Maybe holds either a value (Just) or nothing.
// The zero value is Nothing.
type Maybe struct {
	value any
	ok    bool
}

// Just boxes v.
func Just(v any) Maybe {
	return Maybe{value: v, ok: true}
}

// Nothing returns the empty box.
func Nothing() Maybe {
	return Maybe{}
}

// Unbox returns the boxed value and whether one is present.
func (m Maybe) Unbox() (any, bool) {
	return m.value, m.ok
}

// IsJust reports whether m holds a value.
func (m Maybe) IsJust() bool {
	return m.ok
}

// IsNothing reports whether m is empty.
func (m Maybe) IsNothing() bool {
	return !m.ok
}

// OrElse returns the boxed value, or fallback for Nothing.
func (m Maybe) OrElse(fallback any) any {
	if m.ok {
		return m.value
	}
	return fallback
}

// String renders Just(v) or Nothing.
func (m Maybe) String() string {
	if !m.ok {
		return "Nothing"
	}
	return fmt.Sprintf("Just(%v)", m.value)
}
