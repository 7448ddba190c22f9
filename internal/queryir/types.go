package queryir

import "github.com/roach88/vector/internal/ir"

// Query is a query node. Only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate is a filter condition. Only types in this package implement
// it.
type Predicate interface {
	predicateNode()
}

// Select reads rows of one table.
//
//	Select{
//	  From:   "calls",
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: "session_id", Value: ir.IRString("s1")},
//	    Equals{Field: "outcome", Value: ir.IRString("error")},
//	  }},
//	}
//
// translates to
//
//	SELECT id, session_id, ... FROM calls
//	WHERE session_id = ? AND outcome = ?
//	ORDER BY seq ASC, id ASC COLLATE BINARY
type Select struct {
	From   string    // table name
	Fields []string  // columns to return; empty means every column in schema order
	Filter Predicate // nil = no filter
	Limit  int       // 0 = no limit
}

func (Select) queryNode() {}

// Equals matches rows whose field equals a scalar value.
//
// Comparing against IRNull never matches: SQL NULL is not equal to
// anything, itself included. Validate warns about it.
type Equals struct {
	Field string
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// In matches rows whose field equals any of Values.
// An empty Values list is rejected by Validate.
type In struct {
	Field  string
	Values []ir.IRValue
}

func (In) predicateNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Schema maps table names to their columns, in column order.
type Schema map[string][]string

// CallLog is the schema of the vector call log.
var CallLog = Schema{
	"calls": {
		"id", "session_id", "seq", "name", "args", "outcome", "result",
		"error_code", "error_message", "clause", "engine_version", "ir_version",
	},
	"tables":         {"hash", "name", "spec"},
	"session_tables": {"session_id", "position", "hash"},
}

// Columns returns the columns of table, or nil if it is unknown.
func (s Schema) Columns(table string) []string {
	cols, ok := s[table]
	if !ok {
		return nil
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// Has reports whether table has column.
func (s Schema) Has(table, column string) bool {
	for _, c := range s[table] {
		if c == column {
			return true
		}
	}
	return false
}

// Where builds the conjunction of Equals predicates for fields, in the
// order given by keys. It is a convenience for callers holding a
// field → value map.
func Where(keys []string, fields map[string]ir.IRValue) Predicate {
	if len(keys) == 0 {
		return nil
	}
	and := And{Predicates: make([]Predicate, 0, len(keys))}
	for _, k := range keys {
		and.Predicates = append(and.Predicates, Equals{Field: k, Value: fields[k]})
	}
	return and
}
