package queryir

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/vector/internal/ir"
)

// identifier matches names that may be spliced into SQL. Table and column
// names cannot be bound as parameters, so they are checked instead.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	// Valid is false when the query cannot be compiled.
	Valid bool

	// Errors lists the reasons the query is invalid.
	Errors []string

	// Warnings lists legal constructs that are probably mistakes.
	Warnings []string
}

// Err returns the errors as a single error, or nil.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &InvalidQueryError{Errors: r.Errors}
}

// InvalidQueryError reports why a query failed validation.
type InvalidQueryError struct {
	Errors []string
}

func (e *InvalidQueryError) Error() string {
	return "invalid query: " + strings.Join(e.Errors, "; ")
}

// Validate checks q against schema: the table and every column must
// exist, and compared values must be scalars.
//
// Validate is a pure function with no side effects.
func Validate(q Query, schema Schema) ValidationResult {
	v := &validator{schema: schema}
	v.validateQuery(q)
	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

type validator struct {
	schema   Schema
	table    string
	errors   []string
	warnings []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addError("nil query")
			return
		}
		v.validateSelect(*query)
	case nil:
		v.addError("nil query")
	default:
		v.addError("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if !identifier.MatchString(sel.From) {
		v.addError("invalid table name %q", sel.From)
		return
	}
	if _, ok := v.schema[sel.From]; !ok {
		v.addError("unknown table %q", sel.From)
		return
	}
	v.table = sel.From

	for _, f := range sel.Fields {
		v.checkColumn(f)
	}
	if sel.Limit < 0 {
		v.addError("negative limit %d", sel.Limit)
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) checkColumn(name string) bool {
	if !identifier.MatchString(name) {
		v.addError("invalid column name %q", name)
		return false
	}
	if !v.schema.Has(v.table, name) {
		v.addError("unknown column %q in table %s", name, v.table)
		return false
	}
	return true
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case In:
		v.validateIn(pred)
	case *In:
		v.validateIn(*pred)
	case And:
		v.validateAnd(pred)
	case *And:
		v.validateAnd(*pred)
	case nil:
	default:
		v.addError("unknown predicate type: %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	if !v.checkColumn(eq.Field) {
		return
	}
	v.checkValue(eq.Field, eq.Value)
}

func (v *validator) validateIn(in In) {
	if !v.checkColumn(in.Field) {
		return
	}
	if len(in.Values) == 0 {
		v.addError("field %q: IN needs at least one value", in.Field)
		return
	}
	for _, val := range in.Values {
		v.checkValue(in.Field, val)
	}
}

func (v *validator) validateAnd(and And) {
	for _, sub := range and.Predicates {
		v.validatePredicate(sub)
	}
}

func (v *validator) checkValue(field string, val ir.IRValue) {
	switch val.(type) {
	case ir.IRString, ir.IRInt, ir.IRFloat, ir.IRBool:
	case ir.IRNull, nil:
		v.addWarning("field %q compared to null never matches", field)
	default:
		v.addError("field %q: cannot compare against %s", field, ir.TypeName(val))
	}
}
