package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/vector/internal/ir"
)

const callColumns = `id, session_id, seq, name, args, outcome, result, error_code, error_message, clause, engine_version, ir_version`

// ReadSession returns every call of a session ordered by seq ASC, id ASC
// COLLATE BINARY.
//
// Returns an empty slice (not nil) if the session has no calls.
func (s *Store) ReadSession(ctx context.Context, sessionID string) ([]ir.CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+callColumns+`
		FROM calls
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	return collectCalls(rows)
}

// QueryCalls runs a compiled query that selects every call column in
// schema order and scans the rows into records.
func (s *Store) QueryCalls(ctx context.Context, query string, args ...any) ([]ir.CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	return collectCalls(rows)
}

// ReadSessionTables returns the tables bound into a session, in load order.
func (s *Store) ReadSessionTables(ctx context.Context, sessionID string) ([]ir.TableSpec, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.spec
		FROM session_tables st
		JOIN tables t ON st.hash = t.hash
		WHERE st.session_id = ?
		ORDER BY st.position ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session tables: %w", err)
	}
	defer rows.Close()

	tables := []ir.TableSpec{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan session table: %w", err)
		}
		spec, err := unmarshalTable(data)
		if err != nil {
			return nil, err
		}
		tables = append(tables, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session tables: %w", err)
	}
	return tables, nil
}

func collectCalls(rows *sql.Rows) ([]ir.CallRecord, error) {
	defer rows.Close()

	calls := []ir.CallRecord{}
	for rows.Next() {
		rec, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}

func scanCall(row *sql.Rows) (ir.CallRecord, error) {
	var (
		rec      ir.CallRecord
		argsJSON string
		result   sql.NullString
	)

	err := row.Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.Seq,
		&rec.Name,
		&argsJSON,
		&rec.Outcome,
		&result,
		&rec.ErrorCode,
		&rec.ErrorMessage,
		&rec.Clause,
		&rec.EngineVersion,
		&rec.IRVersion,
	)
	if err != nil {
		return ir.CallRecord{}, fmt.Errorf("scan call: %w", err)
	}

	if rec.Args, err = unmarshalArgs(argsJSON); err != nil {
		return ir.CallRecord{}, err
	}
	if rec.Result, err = unmarshalResult(result); err != nil {
		return ir.CallRecord{}, err
	}
	return rec, nil
}
