// Package engine implements the vector runtime session.
//
// An Engine binds compiled clause tables (ir.TableSpec) to a catalog of
// utility modules and executes calls against both:
//
//	eng := engine.New(catalog, engine.WithStore(s))
//	_ = eng.LoadTables(ctx, specs...)
//	res, err := eng.Call(ctx, "classify", ir.IRArray{ir.IRInt(0)})
//
// A call names a catalog entry ("lambda.id") or a table ("classify") and
// carries one argument batch per application, so Call(ctx, "f", [a], [b])
// evaluates f(a)(b). Tables may name other tables (or themselves) as
// handlers; those references resolve at call time.
//
// # Recording
//
// Each call is stamped with a seq from the logical clock, never wall time,
// and given a content-addressed ID (ir.CallID over session, name, args and
// seq). With a store configured the record is appended to the call log
// together with the tables bound into the session.
//
// # Replay
//
// Evaluation is deterministic, so Replay re-runs a recorded session and
// reports every field that no longer reproduces. There is no separate
// replay mode: recording and replay share evaluate.
//
// # Errors
//
// Failures are classified into stable codes by Classify: the typed errors
// of the arity, curry, registry and match packages map to
// NON_INTROSPECTABLE, ARGUMENT_TYPE, DUPLICATE_DEFINITION,
// UNDEFINED_NAME, INCOMPLETE_MATCH and CLAUSE_ARITY. Anything else a
// target returns is TARGET_FAILED. Nothing is retried.
package engine
