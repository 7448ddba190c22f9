// Package querysql compiles queryir queries to parameterized SQLite.
package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/queryir"
)

// SQLCompiler compiles queries to parameterized SQL for SQLite.
//
// Every query carries an ORDER BY with a unique tiebreaker, and every value
// is bound as a parameter. Table and column names are checked against
// Schema before they are written into the statement.
type SQLCompiler struct {
	Schema queryir.Schema
}

// NewSQLCompiler returns a compiler for the call log schema.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Schema: queryir.CallLog}
}

// orderKeys gives the stable ordering of each call log table.
var orderKeys = map[string]string{
	"calls":          "seq ASC, id ASC COLLATE BINARY",
	"tables":         "hash ASC COLLATE BINARY",
	"session_tables": "session_id ASC COLLATE BINARY, position ASC",
}

// Compile converts q to a (sql, params) pair.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	if res := queryir.Validate(q, c.Schema); !res.Valid {
		return "", nil, res.Err()
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	fields := q.Fields
	if len(fields) == 0 {
		fields = c.Schema.Columns(q.From)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.From)

	var params []any
	if q.Filter != nil {
		where, whereParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		if where != "" {
			b.WriteString(" WHERE ")
			b.WriteString(where)
			params = whereParams
		}
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(c.stableOrderKey(q.From))

	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}

	return b.String(), params, nil
}

// stableOrderKey falls back to the table's first column for tables
// outside the call log.
func (c *SQLCompiler) stableOrderKey(table string) string {
	if key, ok := orderKeys[table]; ok {
		return key
	}
	return c.Schema[table][0] + " ASC"
}

func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return compileEquals(pred)
	case *queryir.Equals:
		return compileEquals(*pred)
	case queryir.In:
		return compileIn(pred)
	case *queryir.In:
		return compileIn(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq queryir.Equals) (string, []any, error) {
	param, err := irValueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("field %s: %w", eq.Field, err)
	}
	return eq.Field + " = ?", []any{param}, nil
}

func compileIn(in queryir.In) (string, []any, error) {
	params := make([]any, 0, len(in.Values))
	for _, v := range in.Values {
		param, err := irValueToParam(v)
		if err != nil {
			return "", nil, fmt.Errorf("field %s: %w", in.Field, err)
		}
		params = append(params, param)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
	return in.Field + " IN (" + marks + ")", params, nil
}

// compileAnd drops empty conjuncts; an And with nothing left compiles to
// the empty string, which the caller treats as no filter.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	var parts []string
	var params []any
	for _, sub := range and.Predicates {
		sql, subParams, err := c.compilePredicate(sub)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		params = append(params, subParams...)
	}
	if len(parts) == 1 {
		return parts[0], params, nil
	}
	for i, p := range parts {
		if strings.Contains(p, " AND ") {
			parts[i] = "(" + p + ")"
		}
	}
	return strings.Join(parts, " AND "), params, nil
}

// irValueToParam converts a scalar IRValue to a driver parameter. Booleans
// are stored as 0/1 in SQLite.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRFloat:
		return float64(val), nil
	case ir.IRBool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case ir.IRNull, nil:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
