package lambda

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vector/internal/curry"
	"github.com/roach88/vector/internal/registry"
)

func newModule(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New(Name, Module()...)
	require.NoError(t, err)
	return r
}

func TestModule_Names(t *testing.T) {
	r := newModule(t)
	assert.Equal(t, []string{"id", "k", "pipe", "compose", "flip", "apply"}, r.Names())

	for _, name := range r.Names() {
		_, err := r.Resolve(name)
		assert.NoError(t, err, name)
	}
}

func TestID(t *testing.T) {
	r := newModule(t)
	out, err := r.Call("id", "x")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestK(t *testing.T) {
	r := newModule(t)

	konst, err := r.Call("k", "zero")
	require.NoError(t, err)

	for _, args := range [][]any{{}, {1}, {1, 2, 3}} {
		out, err := curry.Invoke(konst, args...)
		require.NoError(t, err)
		assert.Equal(t, "zero", out)
	}
}

func TestPipeAndCompose(t *testing.T) {
	add := func(a, b int) int { return a + b }
	double := func(n int) int { return n * 2 }
	show := func(n int) string { return strings.Repeat("*", n) }

	piped := Pipe(add, double, show)
	out, err := piped(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "******", out)

	composed := Compose(show, double, add)
	out, err = composed(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "******", out)

	out, err = Pipe()("same")
	require.NoError(t, err)
	assert.Equal(t, "same", out)
}

func TestPipe_FalsyIntermediateStillFlows(t *testing.T) {
	zero := func(any) int { return 0 }
	inc := func(n int) int { return n + 1 }

	out, err := Pipe(zero, inc)("ignored")
	require.NoError(t, err)
	assert.Equal(t, 1, out)
}

func TestPipe_ErrorStops(t *testing.T) {
	sentinel := errors.New("stop")
	calls := 0
	out, err := Pipe(
		func(any) (any, error) { return nil, sentinel },
		func(any) any { calls++; return nil },
	)(1)
	assert.Nil(t, out)
	assert.Same(t, sentinel, err)
	assert.Equal(t, 0, calls)
}

func TestPipe_ThroughRegistryIsArityZero(t *testing.T) {
	r := newModule(t)
	n, err := r.Arity("pipe")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	fn, err := r.Call("pipe", strings.ToUpper, strings.TrimSpace)
	require.NoError(t, err)
	out, err := curry.Invoke(fn, "  go ")
	require.NoError(t, err)
	assert.Equal(t, "GO", out)
}

func TestFlip(t *testing.T) {
	r := newModule(t)
	sub := func(a, b int) int { return a - b }

	flipped, err := r.Call("flip", sub)
	require.NoError(t, err)

	out, err := curry.Apply(flipped, []any{1}, []any{10})
	require.NoError(t, err)
	assert.Equal(t, 9, out)
}

func TestApply(t *testing.T) {
	r := newModule(t)
	out, err := r.Call("apply", strings.ToUpper, "go")
	require.NoError(t, err)
	assert.Equal(t, "GO", out)

	partial, err := r.Call("apply", func(a, b string) string { return a + b }, "x")
	require.NoError(t, err)
	out, err = curry.Invoke(partial, "y")
	require.NoError(t, err)
	assert.Equal(t, "xy", out)
}
