package match

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vector/internal/arity"
	"github.com/roach88/vector/internal/curry"
	"github.com/roach88/vector/internal/maybe"
	"github.com/roach88/vector/internal/pattern"
)

// recorder returns a unary handler that reports its label.
func recorder(label string) func(any) string {
	return func(any) string { return label }
}

func TestTieBreak_DeclarationOrderWins(t *testing.T) {
	table := MustMatch(
		[]any{pattern.Any, recorder("h1")},
		[]any{3, recorder("h2")},
	)

	out, err := table.Call(3)
	require.NoError(t, err)
	assert.Equal(t, "h1", out)
}

func TestArityFilter_SkipsClausesOfOtherLengths(t *testing.T) {
	h1 := func(x, s any) string { return "h1" }
	table := MustMatch(
		[]any{pattern.Any, "string", h1},
		[]any{pattern.Any, recorder("h2")},
	)

	out, err := table.Call(42)
	require.NoError(t, err)
	assert.Equal(t, "h2", out)

	out, err = table.Call(42, "string")
	require.NoError(t, err)
	assert.Equal(t, "h1", out)
}

func TestHandlerWithFewerParamsDropsSurplus(t *testing.T) {
	table := MustMatch(
		[]any{pattern.Any, "string", func(s any) any { return s }},
	)

	out, err := table.Call(7, "string")
	require.NoError(t, err)
	assert.Equal(t, 7, out)
}

func TestExhausted_NoClauseOfThatLength(t *testing.T) {
	table := MustMatch(
		[]any{pattern.Any, pattern.Any, func(a, b any) any { return a }},
	).Named("pair")

	_, err := table.Call(1)
	require.Error(t, err)
	assert.True(t, IsIncompletePatternMatch(err))

	var ie *IncompletePatternMatchError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "pair", ie.Table)
	assert.Equal(t, 1, ie.Args)
	assert.Equal(t, 0, ie.Candidates)
	assert.Contains(t, err.Error(), "pair")
}

func TestExhausted_NoClauseMatches(t *testing.T) {
	table := MustMatch(
		[]any{0, recorder("zero")},
		[]any{1, recorder("one")},
	)

	_, err := table.Call(2)
	var ie *IncompletePatternMatchError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 2, ie.Candidates)
	assert.Contains(t, err.Error(), "<anonymous>")
}

func TestHandlerReceivesFullTuple(t *testing.T) {
	var got []any
	table := MustMatch(
		[]any{pattern.Type("int"), pattern.Type("string"), pattern.Any,
			curry.Func(func(args ...any) (any, error) {
				got = args
				return len(args), nil
			})},
	)

	out, err := table.Call(1, "a", true)
	require.NoError(t, err)
	assert.Equal(t, 3, out)
	assert.Equal(t, []any{1, "a", true}, got)
}

func TestNested_HandlerGetsUnwrappedValue(t *testing.T) {
	table := MustMatch(
		[]any{pattern.Just(pattern.Type("int")), func(n int) int { return n * 10 }},
		[]any{pattern.Type("nothing"), func(any) int { return -1 }},
	)

	out, err := table.Call(maybe.Just(4))
	require.NoError(t, err)
	assert.Equal(t, 40, out)

	out, err = table.Call(maybe.Nothing())
	require.NoError(t, err)
	assert.Equal(t, -1, out)

	_, err = table.Call(maybe.Just("four"))
	assert.True(t, IsIncompletePatternMatch(err))
}

func TestShortCircuitWithinClause(t *testing.T) {
	var calls int
	counting := func(v any) bool {
		calls++
		return true
	}

	table := MustMatch(
		[]any{1, counting, recorder("first")},
		[]any{pattern.Any, pattern.Any, func(a, b any) string { return "second" }},
	)

	out, err := table.Call(2, "x")
	require.NoError(t, err)
	assert.Equal(t, "second", out)
	assert.Equal(t, 0, calls, "predicate after a failing literal must not run")
}

func TestPredicateErrorPropagates(t *testing.T) {
	sentinel := errors.New("guard broke")
	table := MustMatch(
		[]any{func(v any) (bool, error) { return false, sentinel }, recorder("never")},
	)

	_, err := table.Call(1)
	assert.Same(t, sentinel, err)
}

func TestTypedGuardFallsThrough(t *testing.T) {
	table := MustMatch(
		[]any{func(n int) bool { return n > 10 }, recorder("big")},
		[]any{func(any) bool { return true }, recorder("other")},
	)

	out, err := table.Call("hello")
	require.NoError(t, err)
	assert.Equal(t, "other", out)

	out, err = table.Call(11)
	require.NoError(t, err)
	assert.Equal(t, "big", out)

	sel, err := table.Select("hello")
	require.NoError(t, err)
	assert.Equal(t, 1, sel.Clause)
	assert.Equal(t, 2, sel.Tested)
}

func TestHandlerErrorPropagates(t *testing.T) {
	sentinel := errors.New("handler broke")
	table := MustMatch(
		[]any{pattern.Any, func(any) (any, error) { return nil, sentinel }},
	)

	_, err := table.Call(1)
	assert.Same(t, sentinel, err)
}

func TestClauseArityError(t *testing.T) {
	_, err := Match(
		[]any{pattern.Any, recorder("ok")},
		[]any{pattern.Any, func(a, b, c any) any { return a }},
	)
	require.Error(t, err)
	assert.True(t, IsClauseArity(err))

	var ce *ClauseArityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Clause)
	assert.Equal(t, 1, ce.Patterns)
	assert.Equal(t, 3, ce.Handler)
}

func TestMatch_BadEntries(t *testing.T) {
	_, err := Match([]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty entry")

	_, err = Match([]any{1, 2})
	require.Error(t, err)
	assert.True(t, arity.IsNonIntrospectable(err))
	assert.Contains(t, err.Error(), "clause 0")
}

func TestZeroArgumentClause(t *testing.T) {
	table := MustMatch(
		[]any{func() string { return "none" }},
		[]any{pattern.Any, recorder("one")},
	)

	out, err := table.Call()
	require.NoError(t, err)
	assert.Equal(t, "none", out)
}

func TestTableIsArited(t *testing.T) {
	table := MustMatch([]any{pattern.Any, recorder("x")})

	n, err := arity.Of(table)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	c, err := curry.New(table)
	require.NoError(t, err)
	out, err := c.Call("anything")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestTableAsHandler(t *testing.T) {
	inner := MustMatch(
		[]any{"a", recorder("inner-a")},
		[]any{pattern.Any, recorder("inner-other")},
	)
	outer := MustMatch(
		[]any{pattern.Type("string"), inner},
		[]any{pattern.Any, recorder("outer-other")},
	)

	out, err := outer.Call("a")
	require.NoError(t, err)
	assert.Equal(t, "inner-a", out)

	out, err = outer.Call("b")
	require.NoError(t, err)
	assert.Equal(t, "inner-other", out)

	out, err = outer.Call(1)
	require.NoError(t, err)
	assert.Equal(t, "outer-other", out)
}

func TestCurriedHandler(t *testing.T) {
	prefix := curry.Must(func(p, s string) string { return p + s })
	greet, err := prefix.Call("hello ")
	require.NoError(t, err)

	table := MustMatch([]any{pattern.Type("string"), greet})
	out, err := table.Call("world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestSelect(t *testing.T) {
	table := MustMatch(
		[]any{0, recorder("zero")},
		[]any{pattern.Type("int"), recorder("int")},
		[]any{pattern.Any, pattern.Any, func(a, b any) any { return nil }},
		[]any{pattern.Any, recorder("any")},
	)

	sel, err := table.Select(5)
	require.NoError(t, err)
	assert.Equal(t, StateMatched, sel.State)
	assert.Equal(t, 1, sel.Clause)
	assert.Equal(t, 3, sel.Candidates)
	assert.Equal(t, 2, sel.Tested)
	assert.Equal(t, []any{5}, sel.Bound)
	assert.Equal(t, "matched: clause 1 after testing 2 of 3 candidate(s)", sel.String())

	sel, err = table.Select(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, StateExhausted, sel.State)
	assert.Equal(t, -1, sel.Clause)

	_, err = table.Explain(1, 2, 3)
	assert.True(t, IsIncompletePatternMatch(err))
}

func TestSelectDoesNotInvokeHandler(t *testing.T) {
	called := false
	table := MustMatch([]any{pattern.Any, func(any) any {
		called = true
		return nil
	}})

	sel, err := table.Explain(1)
	require.NoError(t, err)
	assert.Equal(t, StateMatched, sel.State)
	assert.False(t, called)
}

func TestDeterminism(t *testing.T) {
	table := MustMatch(
		[]any{pattern.Type("string"), strings.ToUpper},
		[]any{pattern.Any, recorder("other")},
	)
	for i := 0; i < 10; i++ {
		out, err := table.Call("go")
		require.NoError(t, err)
		assert.Equal(t, "GO", out)
	}
}

func TestStrings(t *testing.T) {
	table := MustMatch(
		[]any{pattern.Any, "s", func(a, b any) any { return a }},
	).Named("demo")

	assert.Equal(t, "<table demo 1 clause(s)>", table.String())
	assert.Equal(t, `(_, "s") -> <curried fn 0/2>`, table.Clauses()[0].String())
	assert.Equal(t, "matched", StateMatched.String())
}
