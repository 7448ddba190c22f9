package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/pattern"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// TableSpec errors (E101-E109)
	ErrInvalidTableName  = "E101" // table name missing or malformed
	ErrTableNoClauses    = "E102" // at least one clause required
	ErrHandlerMissing    = "E103" // handler fn is empty
	ErrUnknownTypeTag    = "E104" // type pattern names an unknown tag
	ErrDuplicateName     = "E105" // duplicate table name
	ErrMalformedPattern  = "E106" // pattern kind and payload disagree
	ErrInvalidPredicate  = "E107" // predicate is not a qualified name
	ErrInvalidHandlerRef = "E108" // handler is neither a qualified name nor a table name

	// Reference errors (E110-E119)
	ErrUndefinedHandler   = "E110" // handler names nothing in the catalog or table set
	ErrUndefinedPredicate = "E111" // predicate names nothing in the catalog
)

var (
	tableNamePattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	qualifiedNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\.[A-Za-z_][A-Za-z0-9_.]*$`)
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsQualifiedName reports whether name has the form module.name.
func IsQualifiedName(name string) bool {
	return qualifiedNamePattern.MatchString(name)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.TableSpec:
		return validateTable(spec)
	case ir.TableSpec:
		return validateTable(&spec)
	case []ir.TableSpec:
		return ValidateSet(spec, nil)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// ValidateSet validates a set of tables together: each table on its own,
// duplicate names, and (when known is non-nil) that every handler and
// predicate reference resolves. known reports whether a qualified catalog
// name exists.
func ValidateSet(tables []ir.TableSpec, known func(string) bool) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool, len(tables))
	for i := range tables {
		t := &tables[i]
		errs = append(errs, validateTable(t)...)

		// E105: duplicate table name
		if names[t.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("table.%s", t.Name),
				Message: fmt.Sprintf("duplicate table name: %q", t.Name),
				Code:    ErrDuplicateName,
			})
		}
		names[t.Name] = true
	}

	if known == nil {
		return errs
	}

	for _, t := range tables {
		for ci, c := range t.Clauses {
			field := fmt.Sprintf("table.%s.clauses[%d]", t.Name, ci)

			// E110: handler must resolve to a catalog entry or a table
			fn := c.Handler.Fn
			if fn != "" && !names[fn] && !known(fn) {
				errs = append(errs, ValidationError{
					Field:   field + ".handler",
					Message: fmt.Sprintf("undefined handler %q", fn),
					Code:    ErrUndefinedHandler,
				})
			}

			// E111: predicates must resolve to a catalog entry
			for pi, p := range c.Patterns {
				for _, pred := range predicates(p) {
					if !known(pred) {
						errs = append(errs, ValidationError{
							Field:   fmt.Sprintf("%s.patterns[%d]", field, pi),
							Message: fmt.Sprintf("undefined predicate %q", pred),
							Code:    ErrUndefinedPredicate,
						})
					}
				}
			}
		}
	}

	return errs
}

// predicates lists the predicate names used by p, including nested ones.
func predicates(p ir.PatternSpec) []string {
	switch p.Kind {
	case ir.PatternPredicate:
		return []string{p.Pred}
	case ir.PatternJust:
		if p.Inner != nil {
			return predicates(*p.Inner)
		}
	}
	return nil
}

// validateTable validates a single table specification.
func validateTable(spec *ir.TableSpec) []ValidationError {
	var errs []ValidationError

	// E101: table name
	if !tableNamePattern.MatchString(spec.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid table name %q: must be an identifier without dots", spec.Name),
			Code:    ErrInvalidTableName,
		})
	}

	// E102: at least one clause
	if len(spec.Clauses) == 0 {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("table.%s.clauses", spec.Name),
			Message: "at least one clause is required",
			Code:    ErrTableNoClauses,
		})
	}

	for i, c := range spec.Clauses {
		field := fmt.Sprintf("table.%s.clauses[%d]", spec.Name, i)

		// E103/E108: handler reference
		switch fn := c.Handler.Fn; {
		case fn == "":
			errs = append(errs, ValidationError{
				Field:   field + ".handler",
				Message: "handler fn is required",
				Code:    ErrHandlerMissing,
			})
		case !IsQualifiedName(fn) && !tableNamePattern.MatchString(fn):
			errs = append(errs, ValidationError{
				Field:   field + ".handler",
				Message: fmt.Sprintf("handler %q must be module.name or a table name", fn),
				Code:    ErrInvalidHandlerRef,
			})
		}

		for j, p := range c.Patterns {
			errs = append(errs, validatePattern(p, fmt.Sprintf("%s.patterns[%d]", field, j))...)
		}
	}

	return errs
}

// validatePattern checks that a pattern's payload matches its kind.
func validatePattern(p ir.PatternSpec, field string) []ValidationError {
	malformed := func(msg string) []ValidationError {
		return []ValidationError{{Field: field, Message: msg, Code: ErrMalformedPattern}}
	}

	switch p.Kind {
	case ir.PatternWildcard:
		return nil
	case ir.PatternLiteral:
		if p.Value == nil {
			return malformed("literal pattern requires a value")
		}
		return nil
	case ir.PatternType:
		// E104: unknown tag
		if _, err := pattern.ParseTag(p.Tag); err != nil {
			return []ValidationError{{
				Field:   field,
				Message: fmt.Sprintf("unknown type tag %q, must be one of %v", p.Tag, pattern.Tags),
				Code:    ErrUnknownTypeTag,
			}}
		}
		return nil
	case ir.PatternJust:
		if p.Inner == nil {
			return malformed("just pattern requires an inner pattern")
		}
		return validatePattern(*p.Inner, field+".just")
	case ir.PatternPredicate:
		// E107: qualified predicate name
		if !IsQualifiedName(p.Pred) {
			return []ValidationError{{
				Field:   field,
				Message: fmt.Sprintf("predicate %q must be a qualified name module.name", p.Pred),
				Code:    ErrInvalidPredicate,
			}}
		}
		return nil
	default:
		return malformed(fmt.Sprintf("unknown pattern kind %q", p.Kind))
	}
}
