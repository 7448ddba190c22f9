package maybe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJust(t *testing.T) {
	m := Just(3)

	v, ok := m.Unbox()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.True(t, m.IsJust())
	assert.False(t, m.IsNothing())
	assert.Equal(t, 3, m.OrElse(0))
	assert.Equal(t, "Just(3)", m.String())
}

func TestJustNil(t *testing.T) {
	v, ok := Just(nil).Unbox()
	assert.True(t, ok, "Just(nil) still holds a value")
	assert.Nil(t, v)
}

func TestNothing(t *testing.T) {
	for _, m := range []Maybe{Nothing(), {}} {
		v, ok := m.Unbox()
		assert.False(t, ok)
		assert.Nil(t, v)
		assert.True(t, m.IsNothing())
		assert.Equal(t, "fallback", m.OrElse("fallback"))
		assert.Equal(t, "Nothing", m.String())
	}
}

func TestEquality(t *testing.T) {
	assert.Equal(t, Just("a"), Just("a"))
	assert.NotEqual(t, Just("a"), Just("b"))
	assert.Equal(t, Nothing(), Maybe{})
}
