package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vector/internal/ir"
)

func recordSession(t *testing.T, eng *Engine) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, eng.LoadTables(ctx, classifyTable()))

	calls := []struct {
		name    string
		batches []ir.IRArray
	}{
		{"classify", []ir.IRArray{batch(ir.IRInt(0))}},
		{"classify", []ir.IRArray{batch(ir.IRString("s"))}},
		{"classify", []ir.IRArray{batch()}},
		{"logic.and", []ir.IRArray{batch(ir.IRBool(true))}},
		{"logic.and", []ir.IRArray{batch(ir.IRBool(true)), batch(ir.IRBool(false))}},
		{"nope.nope", nil},
	}
	for _, c := range calls {
		_, _ = eng.Call(ctx, c.name, c.batches...)
	}
}

func TestReplay_Reproduces(t *testing.T) {
	s := newTestStore(t)
	recordSession(t, newTestEngine(t, WithStore(s)))

	// A fresh engine picks up the session's tables from the store.
	fresh := newTestEngine(t, WithStore(s))
	report, err := fresh.Replay(context.Background(), "test-session")
	require.NoError(t, err)

	assert.True(t, report.OK(), "divergences: %+v", report.Divergences)
	assert.Equal(t, 6, report.Calls)
	assert.Equal(t, "test-session", report.Session)
	assert.Len(t, fresh.Tables(), 1)
}

func TestReplay_DoesNotWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	recordSession(t, newTestEngine(t, WithStore(s)))

	before, err := s.GetLastSeq(ctx)
	require.NoError(t, err)

	fresh := newTestEngine(t, WithStore(s))
	_, err = fresh.Replay(ctx, "test-session")
	require.NoError(t, err)

	after, err := s.GetLastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	tables, err := s.ReadSessionTables(ctx, "test-session")
	require.NoError(t, err)
	assert.Len(t, tables, 1)
}

func TestReplay_ReportsDivergence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	args := ir.IRArray{batch(ir.IRInt(1))}
	rec := ir.CallRecord{
		ID:            ir.MustCallID("forged", "lambda.id", args, 1),
		SessionID:     "forged",
		Seq:           1,
		Name:          "lambda.id",
		Args:          args,
		Outcome:       ir.OutcomeOK,
		Result:        ir.IRInt(2),
		Clause:        -1,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	require.NoError(t, s.WriteCall(ctx, rec))

	wrongID := rec
	wrongID.ID = "not-the-id"
	wrongID.Seq = 2
	wrongID.Result = ir.IRInt(1)
	require.NoError(t, s.WriteCall(ctx, wrongID))

	eng := newTestEngine(t, WithStore(s))
	report, err := eng.Replay(ctx, "forged")
	require.NoError(t, err)
	assert.False(t, report.OK())
	require.Len(t, report.Divergences, 2)

	assert.Equal(t, Divergence{
		Seq: 1, Name: "lambda.id", Field: "result", Recorded: "2", Replayed: "1",
	}, report.Divergences[0])

	d := report.Divergences[1]
	assert.Equal(t, int64(2), d.Seq)
	assert.Equal(t, "id", d.Field)
	assert.Equal(t, "not-the-id", d.Recorded)
	assert.Equal(t, ir.MustCallID("forged", "lambda.id", args, 2), d.Replayed)
}

func TestReplay_OutcomeDivergence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Recorded against a catalog that defined the name; replayed without it.
	args := ir.IRArray{batch(ir.IRInt(1))}
	require.NoError(t, s.WriteCall(ctx, ir.CallRecord{
		ID:            ir.MustCallID("gone", "extra.f", args, 1),
		SessionID:     "gone",
		Seq:           1,
		Name:          "extra.f",
		Args:          args,
		Outcome:       ir.OutcomeOK,
		Result:        ir.IRInt(1),
		Clause:        -1,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}))

	report, err := newTestEngine(t, WithStore(s)).Replay(ctx, "gone")
	require.NoError(t, err)

	fields := make([]string, len(report.Divergences))
	for i, d := range report.Divergences {
		fields[i] = d.Field
	}
	assert.Equal(t, []string{"outcome", "error_code", "result"}, fields)
	assert.Equal(t, string(ErrCodeUndefinedName), report.Divergences[1].Replayed)
}

func TestReplay_NoStore(t *testing.T) {
	_, err := newTestEngine(t).Replay(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestReplay_EmptySession(t *testing.T) {
	s := newTestStore(t)
	report, err := newTestEngine(t, WithStore(s)).Replay(context.Background(), "unknown")
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Zero(t, report.Calls)
}

func TestPreload_DoesNotRecordTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	eng := newTestEngine(t, WithStore(s))

	require.NoError(t, eng.Preload(ctx, classifyTable()))

	tables, err := s.ReadSessionTables(ctx, "test-session")
	require.NoError(t, err)
	assert.Empty(t, tables)

	res, err := eng.Call(ctx, "classify", batch(ir.IRInt(0)))
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("zero"), res.Record.Result)
}

func TestReplay_UsesPreloadedTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	recordSession(t, newTestEngine(t, WithStore(s)))

	fresh := newTestEngine(t, WithStore(s))
	require.NoError(t, fresh.Preload(ctx, classifyTable()))

	report, err := fresh.Replay(ctx, "test-session")
	require.NoError(t, err)
	assert.True(t, report.OK(), "divergences: %+v", report.Divergences)
	assert.Len(t, fresh.Tables(), 1)
}
