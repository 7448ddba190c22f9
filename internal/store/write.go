package store

import (
	"context"
	"fmt"

	"github.com/roach88/vector/internal/ir"
)

// WriteCall inserts a call record into the store.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: rewriting a record with
// the same content-addressed ID is a no-op. Reusing a (session, seq) pair
// for a different call is still an error.
func (s *Store) WriteCall(ctx context.Context, rec ir.CallRecord) error {
	argsJSON, err := marshalArgs(rec.Args)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}

	resultJSON, err := marshalResult(rec.Result)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calls
		(id, session_id, seq, name, args, outcome, result, error_code, error_message, clause, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.SessionID,
		rec.Seq,
		rec.Name,
		argsJSON,
		rec.Outcome,
		resultJSON,
		rec.ErrorCode,
		rec.ErrorMessage,
		rec.Clause,
		rec.EngineVersion,
		rec.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}
	return nil
}

// WriteSessionTables records the tables bound into a session, in load
// order. Table specs are stored once per content hash.
func (s *Store) WriteSessionTables(ctx context.Context, sessionID string, tables []ir.TableSpec) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write session tables: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for i, t := range tables {
		hash, err := ir.TableHash(t)
		if err != nil {
			return fmt.Errorf("write session tables: %w", err)
		}
		spec, err := marshalTable(t)
		if err != nil {
			return fmt.Errorf("write session tables: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tables (hash, name, spec) VALUES (?, ?, ?)
			ON CONFLICT(hash) DO NOTHING
		`, hash, t.Name, spec); err != nil {
			return fmt.Errorf("write session tables: insert table %s: %w", t.Name, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_tables (session_id, position, hash) VALUES (?, ?, ?)
			ON CONFLICT(session_id, position) DO UPDATE SET hash = excluded.hash
		`, sessionID, i, hash); err != nil {
			return fmt.Errorf("write session tables: bind table %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write session tables: commit: %w", err)
	}
	return nil
}
