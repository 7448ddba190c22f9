package arity

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedArity int

func (f fixedArity) Arity() int { return int(f) }

type opaqueHost struct{}

func (opaqueHost) Call(args ...any) (any, error) { return nil, nil }

func TestOf_FuncParameterCount(t *testing.T) {
	testCases := []struct {
		name string
		fn   any
		want int
	}{
		{"nullary", func() int { return 1 }, 0},
		{"unary", func(a int) int { return a }, 1},
		{"binary", func(a, b string) string { return a + b }, 2},
		{"ternary with error", func(a, b, c any) (any, error) { return nil, nil }, 3},
		{"no results", func(a, b int) {}, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Of(tc.fn)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOf_VariadicIsAlwaysReady(t *testing.T) {
	fn := func(prefix string, rest ...int) int { return len(rest) }

	n, err := Of(fn)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "variadic callables fire immediately")

	sig, err := Inspect(fn)
	require.NoError(t, err)
	assert.Equal(t, 1, sig.Fixed, "fixed count excludes the variadic capture")
	assert.True(t, sig.Variadic)
}

func TestOf_AritedReportsOwnArity(t *testing.T) {
	n, err := Of(fixedArity(4))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestOf_NegativeArityRejected(t *testing.T) {
	_, err := Of(fixedArity(-1))
	require.Error(t, err)
	assert.True(t, IsNonIntrospectable(err))
}

func TestOf_NonIntrospectable(t *testing.T) {
	var nilFunc func(int) int

	testCases := []struct {
		name string
		v    any
	}{
		{"nil", nil},
		{"nil func", nilFunc},
		{"integer", 42},
		{"string", "add"},
		{"host callable without arity", opaqueHost{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Of(tc.v)
			require.Error(t, err)

			var ne *NonIntrospectableCallableError
			require.ErrorAs(t, err, &ne)
			assert.NotEmpty(t, ne.Reason)
		})
	}
}

func TestIsNonIntrospectable_Wrapped(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &NonIntrospectableCallableError{Reason: "x"})
	assert.True(t, IsNonIntrospectable(err))
	assert.False(t, IsNonIntrospectable(fmt.Errorf("other")))
}

func TestInspector_CachesPerType(t *testing.T) {
	in := NewInspector()
	f1 := func(a, b int) int { return a + b }
	f2 := func(a, b int) int { return a * b }

	typ := reflect.TypeOf(f1)
	assert.False(t, in.cached(typ))

	n, err := in.Of(f1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, in.cached(typ))

	// Same signature, different func: served from cache.
	n, err = in.Of(f2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInspector_ConcurrentUse(t *testing.T) {
	in := NewInspector()
	fn := func(a, b, c int) int { return a + b + c }

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := in.Of(fn)
			assert.NoError(t, err)
			assert.Equal(t, 3, n)
		}()
	}
	wg.Wait()
}
