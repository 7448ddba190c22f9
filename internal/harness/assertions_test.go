package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/store"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Call: "classify", Args: ir.IRArray{ir.IRArray{ir.IRInt(0)}}, Outcome: ir.OutcomeOK, Result: ir.IRString("zero"), Clause: 0},
		{Seq: 2, Call: "lambda.id", Args: ir.IRArray{ir.IRArray{ir.IRString("x")}}, Outcome: ir.OutcomeOK, Result: ir.IRString("x"), Clause: -1},
		{Seq: 3, Call: "classify", Args: ir.IRArray{ir.IRArray{}}, Outcome: ir.OutcomeError, Error: "INCOMPLETE_MATCH", Clause: -1},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Call: "classify"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Call: "classify", Args: [][]any{{0}}}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Call: "classify", Args: [][]any{{}}}))

	err := assertTraceContains(trace, Assertion{Call: "classify", Args: [][]any{{1}}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Equal(t, "call classify with args [[1]]", ae.Expected)

	assert.Error(t, assertTraceContains(trace, Assertion{Call: "logic.not"}))
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Calls: []string{"classify", "lambda.id"}}))

	err := assertTraceOrder(trace, Assertion{Calls: []string{"lambda.id", "classify"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lambda.id (pos 2) should be before classify (pos 1)")

	err = assertTraceOrder(trace, Assertion{Calls: []string{"classify", "logic.not"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing call: logic.not")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Call: "classify", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Call: "logic.not", Count: 0}))

	err := assertTraceCount(trace, Assertion{Call: "lambda.id", Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 occurrences of lambda.id")
	assert.Contains(t, err.Error(), "[3] classify [[]] -> error INCOMPLETE_MATCH")
}

func TestAssertFinalState(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	args := ir.IRArray{ir.IRArray{ir.IRInt(1)}}
	for seq := int64(1); seq <= 2; seq++ {
		require.NoError(t, st.WriteCall(ctx, ir.CallRecord{
			ID:            ir.MustCallID("s", "lambda.id", args, seq),
			SessionID:     "s",
			Seq:           seq,
			Name:          "lambda.id",
			Args:          args,
			Outcome:       ir.OutcomeOK,
			Result:        ir.IRInt(1),
			Clause:        -1,
			EngineVersion: ir.EngineVersion,
			IRVersion:     ir.IRVersion,
		}))
	}

	ok := Assertion{
		Table:  "calls",
		Where:  map[string]any{"seq": 2},
		Expect: map[string]any{"name": "lambda.id", "outcome": "ok", "clause": -1, "result": "1"},
	}
	assert.NoError(t, assertFinalState(ctx, st, ok))

	testCases := []struct {
		name    string
		a       Assertion
		wantErr string
	}{
		{"value mismatch", Assertion{Table: "calls", Where: map[string]any{"seq": 1}, Expect: map[string]any{"outcome": "error"}}, `field "outcome" = error`},
		{"missing column", Assertion{Table: "calls", Where: map[string]any{"seq": 1}, Expect: map[string]any{"nope": 1}}, `field "nope" not present`},
		{"no row", Assertion{Table: "calls", Where: map[string]any{"seq": 9}, Expect: map[string]any{"seq": 9}}, "row not found"},
		{"ambiguous", Assertion{Table: "calls", Where: map[string]any{"session_id": "s"}, Expect: map[string]any{"seq": 1}}, "multiple rows matched"},
		{"bad table", Assertion{Table: "calls; DROP TABLE calls", Expect: map[string]any{"seq": 1}}, "invalid table name"},
		{"bad column", Assertion{Table: "calls", Where: map[string]any{"seq = 1 OR 1": 1}, Expect: map[string]any{"seq": 1}}, "invalid column name"},
		{"unknown table", Assertion{Table: "nope", Expect: map[string]any{"seq": 1}}, `unknown table "nope"`},
		{"unknown column", Assertion{Table: "calls", Where: map[string]any{"nope": 1}, Expect: map[string]any{"seq": 1}}, `unknown column "nope"`},
		{"composite where", Assertion{Table: "calls", Where: map[string]any{"args": []any{1}}, Expect: map[string]any{"seq": 1}}, "cannot compare against array"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := assertFinalState(ctx, st, tc.a)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestStateValuesEqual(t *testing.T) {
	assert.True(t, stateValuesEqual("a", []byte("a")))
	assert.True(t, stateValuesEqual(3, int64(3)))
	assert.True(t, stateValuesEqual(true, int64(1)))
	assert.True(t, stateValuesEqual(nil, nil))
	assert.False(t, stateValuesEqual(nil, int64(0)))
	assert.False(t, stateValuesEqual("3", int64(3)))
	assert.False(t, stateValuesEqual(1.5, int64(1)))
}

func TestEvaluateAssertions(t *testing.T) {
	result := &Result{Trace: sampleTrace()}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Call: "classify", Count: 2},
		{Type: AssertTraceCount, Call: "classify", Count: 5},
		{Type: AssertFinalState, Table: "calls", Expect: map[string]any{"seq": 1}},
		{Type: "bogus"},
	}, nil)

	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "5 occurrences of classify")
	assert.Contains(t, errs[1], "final_state requires database context")
	assert.Contains(t, errs[2], `unknown assertion type "bogus"`)
}
