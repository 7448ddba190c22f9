package querysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/queryir"
)

const allCallColumns = "id, session_id, seq, name, args, outcome, result, " +
	"error_code, error_message, clause, engine_version, ir_version"

func TestCompile_Select(t *testing.T) {
	tests := []struct {
		name   string
		query  queryir.Query
		sql    string
		params []any
	}{
		{
			name:  "all columns",
			query: queryir.Select{From: "calls"},
			sql:   "SELECT " + allCallColumns + " FROM calls ORDER BY seq ASC, id ASC COLLATE BINARY",
		},
		{
			name: "fields and equals",
			query: queryir.Select{
				From:   "calls",
				Fields: []string{"seq", "name"},
				Filter: queryir.Equals{Field: "session_id", Value: ir.IRString("s1")},
			},
			sql:    "SELECT seq, name FROM calls WHERE session_id = ? ORDER BY seq ASC, id ASC COLLATE BINARY",
			params: []any{"s1"},
		},
		{
			name: "and with in",
			query: &queryir.Select{
				From: "calls",
				Filter: queryir.And{Predicates: []queryir.Predicate{
					queryir.Equals{Field: "session_id", Value: ir.IRString("s1")},
					queryir.In{Field: "error_code", Values: []ir.IRValue{
						ir.IRString("INCOMPLETE_MATCH"), ir.IRString("NOT_A_FUNCTION"),
					}},
				}},
				Limit: 5,
			},
			sql: "SELECT " + allCallColumns + " FROM calls" +
				" WHERE session_id = ? AND error_code IN (?, ?)" +
				" ORDER BY seq ASC, id ASC COLLATE BINARY LIMIT 5",
			params: []any{"s1", "INCOMPLETE_MATCH", "NOT_A_FUNCTION"},
		},
		{
			name: "nested and",
			query: queryir.Select{
				From:   "session_tables",
				Fields: []string{"hash"},
				Filter: queryir.And{Predicates: []queryir.Predicate{
					queryir.Equals{Field: "session_id", Value: ir.IRString("s1")},
					queryir.And{Predicates: []queryir.Predicate{
						queryir.Equals{Field: "position", Value: ir.IRInt(0)},
						queryir.Equals{Field: "hash", Value: ir.IRString("h")},
					}},
				}},
			},
			sql: "SELECT hash FROM session_tables" +
				" WHERE session_id = ? AND (position = ? AND hash = ?)" +
				" ORDER BY session_id ASC COLLATE BINARY, position ASC",
			params: []any{"s1", int64(0), "h"},
		},
		{
			name:  "empty and is no filter",
			query: queryir.Select{From: "tables", Filter: queryir.And{}},
			sql:   "SELECT hash, name, spec FROM tables ORDER BY hash ASC COLLATE BINARY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := NewSQLCompiler().Compile(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompile_AlwaysOrdered(t *testing.T) {
	for table := range queryir.CallLog {
		sql, _, err := NewSQLCompiler().Compile(queryir.Select{From: table})
		require.NoError(t, err)
		assert.Contains(t, sql, " ORDER BY ", table)
	}
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	evil := "x' OR '1'='1"
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{
		From:   "calls",
		Filter: queryir.Equals{Field: "name", Value: ir.IRString(evil)},
	})
	require.NoError(t, err)
	assert.False(t, strings.Contains(sql, evil))
	assert.Equal(t, []any{evil}, params)
}

func TestCompile_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		query queryir.Query
		want  string
	}{
		{"nil", nil, "nil query"},
		{"unknown table", queryir.Select{From: "nope"}, "unknown table"},
		{"unknown column", queryir.Select{
			From:   "calls",
			Filter: queryir.Equals{Field: "missing", Value: ir.IRInt(1)},
		}, "unknown column"},
		{"object value", queryir.Select{
			From:   "calls",
			Filter: queryir.Equals{Field: "result", Value: ir.IRObject{}},
		}, "cannot compare against object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewSQLCompiler().Compile(tt.query)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompile_CustomSchema(t *testing.T) {
	c := &SQLCompiler{Schema: queryir.Schema{"events": {"key", "value"}}}

	sql, _, err := c.Compile(queryir.Select{From: "events"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT key, value FROM events ORDER BY key ASC", sql)
}

func TestIRValueToParam(t *testing.T) {
	tests := []struct {
		in   ir.IRValue
		want any
	}{
		{ir.IRString("a"), "a"},
		{ir.IRInt(3), int64(3)},
		{ir.IRFloat(1.5), 1.5},
		{ir.IRBool(true), int64(1)},
		{ir.IRBool(false), int64(0)},
		{ir.IRNull{}, nil},
	}
	for _, tt := range tests {
		got, err := irValueToParam(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := irValueToParam(ir.IRArray{})
	assert.Error(t, err)
	_, err = irValueToParam(ir.IRObject{})
	assert.Error(t, err)
}
