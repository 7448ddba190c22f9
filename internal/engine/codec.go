package engine

import (
	"fmt"

	"github.com/roach88/vector/internal/curry"
	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/maybe"
)

// Decode converts an IR value into the Go value handed to callables.
//
// Scalars decode as in ir.ToNative. {"$just": v} and {"$nothing": true}
// decode to maybe.Maybe so nested patterns can unwrap them.
func Decode(v ir.IRValue) any {
	switch val := v.(type) {
	case ir.IRArray:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Decode(elem)
		}
		return out
	case ir.IRObject:
		if inner, just, ok := ir.Unboxed(val); ok {
			if just {
				return maybe.Just(Decode(inner))
			}
			return maybe.Nothing()
		}
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Decode(elem)
		}
		return out
	default:
		return ir.ToNative(v)
	}
}

// DecodeBatch decodes one argument batch.
func DecodeBatch(batch ir.IRArray) []any {
	args := make([]any, len(batch))
	for i, v := range batch {
		args[i] = Decode(v)
	}
	return args
}

// Encode converts a call result into IR.
//
// Callable results (partial applications, tables, functions) are encoded
// by description as {"$callable": "..."}.
func Encode(v any) (ir.IRValue, error) {
	if v != nil && curry.IsCallable(v) {
		return ir.IRObject{ir.CallableKey: ir.IRString(describe(v))}, nil
	}
	return ir.FromNative(v)
}

func describe(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", v)
}
