package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/vector/internal/ir"
)

// marshalArgs converts the argument batches to canonical JSON TEXT.
func marshalArgs(args ir.IRArray) (string, error) {
	if args == nil {
		args = ir.IRArray{}
	}
	data, err := ir.MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

// marshalResult converts a result to canonical JSON TEXT.
// A nil result (error outcome) is stored as SQL NULL.
func marshalResult(result ir.IRValue) (sql.NullString, error) {
	if result == nil {
		return sql.NullString{}, nil
	}
	data, err := ir.MarshalCanonical(result)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal result: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalArgs parses canonical JSON TEXT to IRArray.
// Goes through ir.IRArray.UnmarshalJSON so integers above 2^53 survive.
func unmarshalArgs(data string) (ir.IRArray, error) {
	if data == "" || data == "[]" {
		return ir.IRArray{}, nil
	}
	var arr ir.IRArray
	if err := json.Unmarshal([]byte(data), &arr); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return arr, nil
}

func unmarshalResult(data sql.NullString) (ir.IRValue, error) {
	if !data.Valid {
		return nil, nil
	}
	v, err := ir.UnmarshalIRValue([]byte(data.String))
	if err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return v, nil
}

func marshalTable(spec ir.TableSpec) (string, error) {
	data, err := ir.MarshalCanonical(spec.IR())
	if err != nil {
		return "", fmt.Errorf("marshal table: %w", err)
	}
	return string(data), nil
}

func unmarshalTable(data string) (ir.TableSpec, error) {
	var spec ir.TableSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return ir.TableSpec{}, fmt.Errorf("unmarshal table: %w", err)
	}
	return spec, nil
}
