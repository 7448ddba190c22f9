// Package store provides SQLite-backed durable storage for vector call logs.
//
// The store is an append-only log with:
//   - Calls: one row per engine call, keyed by its content-addressed ID
//   - Tables: compiled clause tables, keyed by ir.TableHash
//   - Session tables: which tables a session had bound, in load order
//
// Every read orders by seq (the engine's logical clock) and then by ID with
// binary collation, so a session reads back identically on every replay.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Arguments and results are stored as canonical JSON (see ir.MarshalCanonical).
package store
