package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/vector/internal/ir"
)

// WildcardLiteral is the CUE spelling of the wildcard pattern.
const WildcardLiteral = "_"

// patternKeys are the struct keys that select a pattern form.
var patternKeys = []string{"literal", "type", "just", "pred"}

// CompileTables compiles every table declared under the "table" field of
// v, in declaration order. A value without tables yields an empty slice.
func CompileTables(v cue.Value) ([]ir.TableSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return []ir.TableSpec{}, nil
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var tables []ir.TableSpec
	for iter.Next() {
		spec, err := CompileTable(iter.Value())
		if err != nil {
			return nil, err
		}
		tables = append(tables, *spec)
	}
	return tables, nil
}

// CompileTable parses a CUE value into a TableSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the table struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`table: classify: { clauses: [...] }`)
//	spec, err := CompileTable(v.LookupPath(cue.ParsePath("table.classify")))
func CompileTable(v cue.Value) (*ir.TableSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.TableSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].Unquoted()
	}

	if docVal := v.LookupPath(cue.ParsePath("doc")); docVal.Exists() {
		doc, err := docVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Doc = doc
	}

	clausesVal := v.LookupPath(cue.ParsePath("clauses"))
	if !clausesVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("table.%s.clauses", spec.Name),
			Message: "clauses are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := clausesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for i := 0; iter.Next(); i++ {
		clause, err := parseClause(iter.Value(), fmt.Sprintf("table.%s.clauses[%d]", spec.Name, i))
		if err != nil {
			return nil, err
		}
		spec.Clauses = append(spec.Clauses, clause)
	}

	return spec, nil
}

// parseClause parses {patterns: [...], handler: ...}.
func parseClause(v cue.Value, field string) (ir.ClauseSpec, error) {
	var clause ir.ClauseSpec

	patternsVal := v.LookupPath(cue.ParsePath("patterns"))
	if !patternsVal.Exists() {
		return clause, &CompileError{Field: field + ".patterns", Message: "patterns are required", Pos: v.Pos()}
	}
	iter, err := patternsVal.List()
	if err != nil {
		return clause, formatCUEError(err)
	}
	clause.Patterns = []ir.PatternSpec{}
	for i := 0; iter.Next(); i++ {
		p, err := parsePattern(iter.Value(), fmt.Sprintf("%s.patterns[%d]", field, i))
		if err != nil {
			return clause, err
		}
		clause.Patterns = append(clause.Patterns, p)
	}

	handlerVal := v.LookupPath(cue.ParsePath("handler"))
	if !handlerVal.Exists() {
		return clause, &CompileError{Field: field + ".handler", Message: "handler is required", Pos: v.Pos()}
	}
	clause.Handler, err = parseHandler(handlerVal, field+".handler")
	if err != nil {
		return clause, err
	}

	return clause, nil
}

// parsePattern dispatches on the shape of a pattern value.
func parsePattern(v cue.Value, field string) (ir.PatternSpec, error) {
	if s, err := v.String(); err == nil && s == WildcardLiteral {
		return ir.PatternSpec{Kind: ir.PatternWildcard}, nil
	}
	// Unquoted _ is CUE top.
	if v.IncompleteKind() == cue.TopKind {
		return ir.PatternSpec{Kind: ir.PatternWildcard}, nil
	}

	if v.IncompleteKind() == cue.StructKind {
		key, ok, err := patternKey(v, field)
		if err != nil {
			return ir.PatternSpec{}, err
		}
		if ok {
			return parsePatternForm(v, key, field)
		}
	}

	value, err := ToIR(v)
	if err != nil {
		return ir.PatternSpec{}, withField(err, field)
	}
	return ir.PatternSpec{Kind: ir.PatternLiteral, Value: value}, nil
}

// patternKey reports which pattern form a struct selects. A struct using
// none of the form keys is a literal object; mixing a form key with other
// fields is an error.
func patternKey(v cue.Value, field string) (string, bool, error) {
	iter, err := v.Fields()
	if err != nil {
		return "", false, formatCUEError(err)
	}

	var labels []string
	for iter.Next() {
		labels = append(labels, iter.Selector().Unquoted())
	}

	for _, key := range patternKeys {
		for _, l := range labels {
			if l != key {
				continue
			}
			if len(labels) != 1 {
				return "", false, &CompileError{
					Field:   field,
					Message: fmt.Sprintf("pattern form %q must be the only field, got %v", key, labels),
					Pos:     v.Pos(),
				}
			}
			return key, true, nil
		}
	}
	return "", false, nil
}

func parsePatternForm(v cue.Value, key, field string) (ir.PatternSpec, error) {
	inner := v.LookupPath(cue.MakePath(cue.Str(key)))
	field = field + "." + key

	switch key {
	case "literal":
		value, err := ToIR(inner)
		if err != nil {
			return ir.PatternSpec{}, withField(err, field)
		}
		return ir.PatternSpec{Kind: ir.PatternLiteral, Value: value}, nil

	case "type":
		tag, err := inner.String()
		if err != nil {
			return ir.PatternSpec{}, &CompileError{Field: field, Message: "type tag must be a string", Pos: inner.Pos()}
		}
		return ir.PatternSpec{Kind: ir.PatternType, Tag: tag}, nil

	case "just":
		p, err := parsePattern(inner, field)
		if err != nil {
			return ir.PatternSpec{}, err
		}
		return ir.PatternSpec{Kind: ir.PatternJust, Inner: &p}, nil

	default:
		name, err := inner.String()
		if err != nil {
			return ir.PatternSpec{}, &CompileError{Field: field, Message: "predicate must be a qualified name string", Pos: inner.Pos()}
		}
		return ir.PatternSpec{Kind: ir.PatternPredicate, Pred: name}, nil
	}
}

// parseHandler accepts "name" or {fn: "name", args: [...]}.
func parseHandler(v cue.Value, field string) (ir.HandlerSpec, error) {
	if name, err := v.String(); err == nil {
		return ir.HandlerSpec{Fn: name}, nil
	}

	fnVal := v.LookupPath(cue.ParsePath("fn"))
	if !fnVal.Exists() {
		return ir.HandlerSpec{}, &CompileError{
			Field:   field,
			Message: `handler must be a name or {fn: name, args: [...]}`,
			Pos:     v.Pos(),
		}
	}
	name, err := fnVal.String()
	if err != nil {
		return ir.HandlerSpec{}, formatCUEError(err)
	}
	h := ir.HandlerSpec{Fn: name}

	if argsVal := v.LookupPath(cue.ParsePath("args")); argsVal.Exists() {
		args, err := ToIR(argsVal)
		if err != nil {
			return ir.HandlerSpec{}, withField(err, field+".args")
		}
		arr, ok := args.(ir.IRArray)
		if !ok {
			return ir.HandlerSpec{}, &CompileError{Field: field + ".args", Message: "args must be a list", Pos: argsVal.Pos()}
		}
		h.Args = arr
	}
	return h, nil
}

// ToIR converts a concrete CUE value into an IRValue.
// CUE ints become IRInt and CUE floats IRFloat.
func ToIR(v cue.Value) (ir.IRValue, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if !v.IsConcrete() {
		return nil, &CompileError{Message: "value must be concrete", Pos: v.Pos()}
	}

	switch v.Kind() {
	case cue.NullKind:
		return ir.IRNull{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRBool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRInt(n), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRFloat(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRString(s), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		arr := ir.IRArray{}
		for iter.Next() {
			elem, err := ToIR(iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		obj := ir.IRObject{}
		for iter.Next() {
			elem, err := ToIR(iter.Value())
			if err != nil {
				return nil, err
			}
			obj[iter.Selector().Unquoted()] = elem
		}
		return obj, nil
	default:
		return nil, &CompileError{Message: fmt.Sprintf("unsupported value kind: %v", v.Kind()), Pos: v.Pos()}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	field := e.Field
	if field == "" {
		field = "value"
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			field, e.Message)
	}
	return fmt.Sprintf("%s: %s", field, e.Message)
}

// withField fills in the field of a CompileError that lacks one.
func withField(err error, field string) error {
	if ce, ok := err.(*CompileError); ok && ce.Field == "" {
		ce.Field = field
	}
	return err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
