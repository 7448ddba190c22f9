package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/queryir"
	"github.com/roach88/vector/internal/querysql"
)

func TestReadSession_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Written out of order.
	for _, seq := range []int64{3, 1, 2} {
		rec := createTestCall("sess", "lambda.id", seq, ir.IRArray{ir.IRArray{ir.IRInt(seq)}}, ir.IRInt(seq))
		require.NoError(t, s.WriteCall(ctx, rec))
	}
	require.NoError(t, s.WriteCall(ctx, createTestCall("other", "lambda.id", 4, ir.IRArray{}, ir.IRNull{})))

	calls, err := s.ReadSession(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, calls, 3)
	for i, c := range calls {
		assert.Equal(t, int64(i+1), c.Seq)
		assert.Equal(t, ir.IRInt(i+1), c.Result)
	}
}

func TestReadSession_Empty(t *testing.T) {
	s := createTestStore(t)
	calls, err := s.ReadSession(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, calls)
	assert.Empty(t, calls)
}

func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteCall(ctx, createTestCall("beta", "lambda.id", 5, ir.IRArray{}, ir.IRNull{})))
	require.NoError(t, s.WriteCall(ctx, createTestCall("alpha", "lambda.id", 1, ir.IRArray{}, ir.IRNull{})))

	failed := createTestCall("alpha", "classify", 2, ir.IRArray{}, nil)
	failed.Outcome = ir.OutcomeError
	failed.ErrorCode = "INCOMPLETE_MATCH"
	require.NoError(t, s.WriteCall(ctx, failed))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SessionSummary{
		{ID: "alpha", Calls: 2, Errors: 1, FirstSeq: 1, LastSeq: 2},
		{ID: "beta", Calls: 1, Errors: 0, FirstSeq: 5, LastSeq: 5},
	}, sessions)
}

func TestGetLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.GetLastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.WriteCall(ctx, createTestCall("a", "lambda.id", 7, ir.IRArray{}, ir.IRNull{})))
	require.NoError(t, s.WriteCall(ctx, createTestCall("b", "lambda.id", 3, ir.IRArray{}, ir.IRNull{})))

	seq, err = s.GetLastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}

func TestQueryCalls_CompiledQuery(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteCall(ctx, createTestCall("sess", "classify", 1, ir.IRArray{}, ir.IRString("a"))))
	failed := createTestCall("sess", "classify", 2, ir.IRArray{}, nil)
	failed.Outcome = ir.OutcomeError
	failed.ErrorCode = "INCOMPLETE_MATCH"
	failed.ErrorMessage = "no clause matched"
	require.NoError(t, s.WriteCall(ctx, failed))
	require.NoError(t, s.WriteCall(ctx, createTestCall("other", "classify", 1, ir.IRArray{}, ir.IRString("b"))))

	query, params, err := querysql.NewSQLCompiler().Compile(queryir.Select{
		From: "calls",
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "session_id", Value: ir.IRString("sess")},
			queryir.Equals{Field: "outcome", Value: ir.IRString(ir.OutcomeError)},
		}},
	})
	require.NoError(t, err)

	calls, err := s.QueryCalls(ctx, query, params...)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, int64(2), calls[0].Seq)
	assert.Equal(t, "INCOMPLETE_MATCH", calls[0].ErrorCode)
}

func TestQueryCalls_SchemaMatchesColumns(t *testing.T) {
	assert.Equal(t, callColumns, strings.Join(queryir.CallLog["calls"], ", "))
}
