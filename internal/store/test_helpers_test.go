package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/vector/internal/ir"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestCall creates an ok call record with a content-addressed ID.
func createTestCall(session, name string, seq int64, args ir.IRArray, result ir.IRValue) ir.CallRecord {
	return ir.CallRecord{
		ID:            ir.MustCallID(session, name, args, seq),
		SessionID:     session,
		Seq:           seq,
		Name:          name,
		Args:          args,
		Outcome:       ir.OutcomeOK,
		Result:        result,
		Clause:        -1,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

// readSingleCall reads a session that must hold exactly one call.
func readSingleCall(t *testing.T, s *Store, session string) ir.CallRecord {
	t.Helper()
	calls, err := s.ReadSession(context.Background(), session)
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 call in %s, got %d", session, len(calls))
	}
	return calls[0]
}
