package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/vector/internal/curry"
	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/match"
	"github.com/roach88/vector/internal/pattern"
	"github.com/roach88/vector/internal/registry"
)

// bindTable turns a compiled table spec into a dispatch table whose
// patterns and handlers are resolved against the engine's catalog.
// isTable reports which unqualified names are tables.
func (e *Engine) bindTable(spec ir.TableSpec, isTable func(string) bool) (*match.Table, error) {
	clauses := make([]match.Clause, 0, len(spec.Clauses))
	for i, cs := range spec.Clauses {
		handler, err := e.bindHandler(cs.Handler, isTable)
		if err != nil {
			return nil, fmt.Errorf("table %s: clause %d: %w", spec.Name, i, err)
		}

		patterns := make([]any, len(cs.Patterns))
		for j, ps := range cs.Patterns {
			p, err := e.bindPattern(ps)
			if err != nil {
				return nil, fmt.Errorf("table %s: clause %d: pattern %d: %w", spec.Name, i, j, err)
			}
			patterns[j] = p
		}

		c, err := match.NewClause(handler, patterns...)
		if err != nil {
			var ce *match.ClauseArityError
			if errors.As(err, &ce) {
				ce.Clause = i
			}
			return nil, fmt.Errorf("table %s: %w", spec.Name, err)
		}
		clauses = append(clauses, c)
	}
	return match.NewTable(clauses...).Named(spec.Name), nil
}

// bindPattern resolves a pattern spec to a compiled pattern.
func (e *Engine) bindPattern(ps ir.PatternSpec) (pattern.Pattern, error) {
	switch ps.Kind {
	case ir.PatternWildcard:
		return pattern.Any, nil
	case ir.PatternLiteral:
		return pattern.Literal(Decode(ps.Value)), nil
	case ir.PatternType:
		return pattern.TypeOf(ps.Tag)
	case ir.PatternJust:
		if ps.Inner == nil {
			return pattern.Pattern{}, fmt.Errorf("just pattern without inner pattern")
		}
		inner, err := e.bindPattern(*ps.Inner)
		if err != nil {
			return pattern.Pattern{}, err
		}
		return pattern.Just(inner), nil
	case ir.PatternPredicate:
		pred, err := e.catalog.Resolve(ps.Pred)
		if err != nil {
			return pattern.Pattern{}, err
		}
		return pattern.Compile(pred), nil
	default:
		return pattern.Pattern{}, fmt.Errorf("unknown pattern kind %q", ps.Kind)
	}
}

// bindHandler resolves a handler reference and applies its bound args.
//
// A handler naming a table is resolved at call time, so tables may refer
// to themselves and to each other.
func (e *Engine) bindHandler(hs ir.HandlerSpec, isTable func(string) bool) (any, error) {
	var base *curry.Curried
	if _, _, qualified := registry.Split(hs.Fn); qualified {
		resolved, err := e.catalog.Resolve(hs.Fn)
		if err != nil {
			return nil, err
		}
		base = resolved
	} else {
		if !isTable(hs.Fn) {
			return nil, &registry.UndefinedNameError{Module: tableModule, Name: hs.Fn}
		}
		base = curry.Must(e.tableRef(hs.Fn), curry.WithName(hs.Fn))
	}

	if len(hs.Args) == 0 {
		return base, nil
	}

	bound := DecodeBatch(hs.Args)
	if base.Arity() == 0 {
		return curry.Func(func(rest ...any) (any, error) {
			all := make([]any, 0, len(bound)+len(rest))
			all = append(all, bound...)
			all = append(all, rest...)
			return base.Call(all...)
		}), nil
	}

	h, err := base.Call(bound...)
	if err != nil {
		return nil, fmt.Errorf("handler %s: %w", hs.Fn, err)
	}
	if !curry.IsCallable(h) {
		return nil, fmt.Errorf("handler %s applied to %d arg(s) returned %T, not a callable", hs.Fn, len(bound), h)
	}
	return h, nil
}

// tableRef is a late-bound reference to a loaded table.
func (e *Engine) tableRef(name string) curry.Func {
	return func(args ...any) (any, error) {
		t, err := e.lookupTable(name)
		if err != nil {
			return nil, err
		}
		return t.Call(args...)
	}
}
