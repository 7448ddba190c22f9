// Package harness runs YAML scenarios against the dispatch engine.
//
// A scenario loads clause tables, makes a sequence of calls, checks each
// outcome and then checks laws and assertions over the recorded trace:
//
//	name: classify
//	tables: [classify.cue]
//	session: test-session-001
//	steps:
//	  - call: classify
//	    args: [[0]]
//	    expect: {result: zero, clause: 0}
//	  - call: classify
//	    args: [[1, 2]]
//	    expect: {error: INCOMPLETE_MATCH}
//	laws:
//	  - {type: grouping, call: logic.eqStrict, args: [1, 1]}
//	  - {type: stability, call: lambda.id, args: [x]}
//	  - {type: immutability, call: logic.eqStrict, args: [1, 1], alt: [2]}
//	assertions:
//	  - {type: trace_count, call: classify, count: 2}
//	  - {type: trace_order, calls: [classify, logic.eqStrict]}
//	  - {type: final_state, table: calls, where: {seq: 2}, expect: {error_code: INCOMPLETE_MATCH}}
//
// Args are argument batches: [[1, 2]] is f(1, 2) and [[1], [2]] is
// f(1)(2). Boxed values are written {$just: x} and {$nothing: true}.
//
// # Laws
//
//   - grouping: f(a, b, ...) and f(a)(b)... agree
//   - stability: two identical calls agree
//   - immutability: a shared partial application gives the same result
//     before and after being applied to alt
//
// Grouping and stability calls are recorded in the trace; immutability
// checks call the resolved wrapper directly and are not.
//
// # Determinism
//
// Every scenario runs on a fresh in-memory store with
// testutil.DeterministicClock and a fixed session ID, so its trace is
// identical across runs and can be compared against a golden file.
package harness
