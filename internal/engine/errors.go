package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/vector/internal/arity"
	"github.com/roach88/vector/internal/compiler"
	"github.com/roach88/vector/internal/curry"
	"github.com/roach88/vector/internal/match"
	"github.com/roach88/vector/internal/registry"
)

// RuntimeErrorCode categorizes call failures. Codes are stable and are
// what gets recorded in the call log.
type RuntimeErrorCode string

const (
	// ErrCodeNonIntrospectable indicates a callable whose arity cannot be
	// determined.
	ErrCodeNonIntrospectable RuntimeErrorCode = "NON_INTROSPECTABLE"

	// ErrCodeDuplicateDefinition indicates a name defined twice.
	ErrCodeDuplicateDefinition RuntimeErrorCode = "DUPLICATE_DEFINITION"

	// ErrCodeUndefinedName indicates a call to a name nothing defines.
	ErrCodeUndefinedName RuntimeErrorCode = "UNDEFINED_NAME"

	// ErrCodeIncompleteMatch indicates no clause of a table matched.
	ErrCodeIncompleteMatch RuntimeErrorCode = "INCOMPLETE_MATCH"

	// ErrCodeArgumentType indicates an argument the target cannot accept.
	ErrCodeArgumentType RuntimeErrorCode = "ARGUMENT_TYPE"

	// ErrCodeClauseArity indicates a clause handler needing more arguments
	// than the clause binds.
	ErrCodeClauseArity RuntimeErrorCode = "CLAUSE_ARITY"

	// ErrCodeInvalidTable indicates a table that failed validation.
	ErrCodeInvalidTable RuntimeErrorCode = "INVALID_TABLE"

	// ErrCodeUnrepresentable indicates a result with no IR encoding.
	ErrCodeUnrepresentable RuntimeErrorCode = "UNREPRESENTABLE"

	// ErrCodeTargetFailed covers every other error raised by a target.
	ErrCodeTargetFailed RuntimeErrorCode = "TARGET_FAILED"
)

// RuntimeError is an error raised by the engine itself, as opposed to one
// raised by a target and passed through.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the called name, when there is one.
	Name string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (name=%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// RecordError reports a call that was evaluated but could not be written
// to the store. The Result returned alongside it is still complete.
type RecordError struct {
	Name string
	Seq  int64
	Err  error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	return fmt.Sprintf("record call %s (seq %d): %v", e.Name, e.Seq, e.Err)
}

// Unwrap returns the store error.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// IsRecordError returns true if err is (or wraps) a RecordError.
func IsRecordError(err error) bool {
	var re *RecordError
	return errors.As(err, &re)
}

// TableValidationError carries every validation error found while loading
// tables.
type TableValidationError struct {
	Errors []compiler.ValidationError
}

// Error implements the error interface.
func (e *TableValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid table: " + e.Errors[0].Error()
	}
	return fmt.Sprintf("invalid tables: %s (and %d more)", e.Errors[0].Error(), len(e.Errors)-1)
}

// Classify maps an error onto its stable code. A nil error has no code.
func Classify(err error) RuntimeErrorCode {
	if err == nil {
		return ""
	}

	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	var tv *TableValidationError
	if errors.As(err, &tv) {
		return ErrCodeInvalidTable
	}

	switch {
	case match.IsIncompletePatternMatch(err):
		return ErrCodeIncompleteMatch
	case match.IsClauseArity(err):
		return ErrCodeClauseArity
	case arity.IsNonIntrospectable(err):
		return ErrCodeNonIntrospectable
	case registry.IsDuplicateDefinition(err):
		return ErrCodeDuplicateDefinition
	case registry.IsUndefinedName(err):
		return ErrCodeUndefinedName
	case curry.IsArgumentError(err):
		return ErrCodeArgumentType
	default:
		return ErrCodeTargetFailed
	}
}

// IsCode returns true if err classifies as code.
func IsCode(err error, code RuntimeErrorCode) bool {
	return err != nil && Classify(err) == code
}

func newUnrepresentableError(name string, v any, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnrepresentable,
		Message: fmt.Sprintf("result of type %T has no IR encoding", v),
		Name:    name,
		Err:     cause,
	}
}
