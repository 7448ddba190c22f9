// Package queryir describes read-only queries over the call log as data.
//
// A query names one log table, an optional filter and the columns to
// return. Backends compile it; querysql turns it into parameterized
// SQLite:
//
//	[harness final_state, vector trace] → [Query IR] → [querysql] → SQLite
//
// Supported forms:
//   - Select(from, fields, filter, limit)
//   - Predicates: Equals, In, And
//
// Not supported: joins, OR, aggregates, subqueries. The call log is
// append-only and every useful question so far is a filtered scan of a
// single table.
//
// SEALED INTERFACES:
//
// Query and Predicate use the marker method pattern, so a backend's type
// switch over them is exhaustive.
//
// SCHEMA:
//
// Validate checks table and column names against a Schema. CallLog is the
// schema of the store; its column order is the order Select returns when
// Fields is empty.
package queryir
