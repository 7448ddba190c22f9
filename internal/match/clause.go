package match

import (
	"fmt"
	"strings"

	"github.com/roach88/vector/internal/curry"
	"github.com/roach88/vector/internal/pattern"
)

// Clause is one (patterns, handler) candidate.
type Clause struct {
	patterns []pattern.Pattern
	handler  *curry.Curried
}

// NewClause compiles patterns and wraps handler.
//
// The handler must be callable with at most len(patterns) arguments.
// Arity 0 handlers receive every bound argument.
func NewClause(handler any, patterns ...any) (Clause, error) {
	h, err := curry.New(handler)
	if err != nil {
		return Clause{}, fmt.Errorf("handler: %w", err)
	}
	if h.Arity() > len(patterns) {
		return Clause{}, &ClauseArityError{Patterns: len(patterns), Handler: h.Arity()}
	}
	return Clause{patterns: pattern.CompileAll(patterns...), handler: h}, nil
}

// Patterns returns the compiled patterns.
func (c Clause) Patterns() []pattern.Pattern {
	out := make([]pattern.Pattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// Handler returns the wrapped handler.
func (c Clause) Handler() *curry.Curried {
	return c.handler
}

// Len returns the number of patterns, i.e. the only argument count the
// clause can match.
func (c Clause) Len() int {
	return len(c.patterns)
}

// test runs each pattern against its argument, stopping at the first
// failure.
func (c Clause) test(args []any) (bool, error) {
	for i, p := range c.patterns {
		ok, err := p.Match(args[i])
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// bind returns the handler arguments for a matched call.
func (c Clause) bind(args []any) []any {
	out := make([]any, len(args))
	for i, p := range c.patterns {
		out[i] = p.Bind(args[i])
	}
	return out
}

// String renders the clause as "(p1, p2) -> handler".
func (c Clause) String() string {
	parts := make([]string, len(c.patterns))
	for i, p := range c.patterns {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + c.handler.String()
}
