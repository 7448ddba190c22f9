// Package ir provides the value model and record types shared by the
// compiler, engine, store and harness.
//
// ir imports nothing internal. Everything that crosses a process boundary
// (compiled tables, CLI arguments, recorded calls) is expressed in IR
// values, never in arbitrary Go values.
//
// Key design constraints:
//   - Values are a closed set: null, string, int, float, bool, array, object
//   - Integers and floats are distinct; 1 and 1.0 never compare equal
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only
//     serialization used for content-addressed identity
//   - Logical clocks (seq) only, never wall-clock timestamps
//   - All JSON tags use snake_case
package ir
