package match

import (
	"errors"
	"fmt"
)

// State is a dispatcher state.
type State int

const (
	StateFiltering State = iota
	StateTesting
	StateMatched
	StateExhausted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFiltering:
		return "filtering"
	case StateTesting:
		return "testing"
	case StateMatched:
		return "matched"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Table is an ordered clause set.
//
// Tables are immutable and safe for concurrent use when their patterns
// and handlers are.
type Table struct {
	name    string
	clauses []Clause
	byLen   map[int][]int // argument count -> clause indices, declaration order
}

// NewTable builds a table from clauses in declaration order.
func NewTable(clauses ...Clause) *Table {
	t := &Table{
		clauses: append([]Clause(nil), clauses...),
		byLen:   make(map[int][]int),
	}
	for i, c := range t.clauses {
		t.byLen[c.Len()] = append(t.byLen[c.Len()], i)
	}
	return t
}

// Match builds a table from entries of the form [p1, ..., pn, handler].
func Match(entries ...[]any) (*Table, error) {
	clauses := make([]Clause, 0, len(entries))
	for i, e := range entries {
		if len(e) == 0 {
			return nil, fmt.Errorf("clause %d: empty entry, want patterns followed by a handler", i)
		}
		c, err := NewClause(e[len(e)-1], e[:len(e)-1]...)
		if err != nil {
			var ce *ClauseArityError
			if errors.As(err, &ce) {
				ce.Clause = i
				return nil, ce
			}
			return nil, fmt.Errorf("clause %d: %w", i, err)
		}
		clauses = append(clauses, c)
	}
	return NewTable(clauses...), nil
}

// MustMatch is like Match but panics on error.
func MustMatch(entries ...[]any) *Table {
	t, err := Match(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Named returns a copy of the table carrying name in errors and
// diagnostics.
func (t *Table) Named(name string) *Table {
	cp := *t
	cp.name = name
	return &cp
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Clauses returns the clauses in declaration order.
func (t *Table) Clauses() []Clause {
	out := make([]Clause, len(t.clauses))
	copy(out, t.clauses)
	return out
}

// Arity implements arity.Arited. A table accepts any argument count.
func (t *Table) Arity() int {
	return 0
}

// Selection is the outcome of running the dispatcher without calling a
// handler.
type Selection struct {
	State State

	// Clause is the index of the selected clause, -1 when exhausted.
	Clause int

	// Candidates is the number of clauses left after arity filtering.
	Candidates int

	// Tested is the number of candidates tested, including the winner.
	Tested int

	// Bound holds the handler arguments of a matched clause.
	Bound []any
}

// String renders the selection for diagnostics.
func (s Selection) String() string {
	if s.State != StateMatched {
		return fmt.Sprintf("%s: %d candidate(s), %d tested", s.State, s.Candidates, s.Tested)
	}
	return fmt.Sprintf("%s: clause %d after testing %d of %d candidate(s)",
		s.State, s.Clause, s.Tested, s.Candidates)
}

// Select runs filtering and testing for args.
// Errors come only from predicate patterns and propagate unchanged.
func (t *Table) Select(args ...any) (Selection, error) {
	sel := Selection{State: StateFiltering, Clause: -1}

	candidates := t.byLen[len(args)]
	sel.Candidates = len(candidates)
	if len(candidates) == 0 {
		sel.State = StateExhausted
		return sel, nil
	}

	sel.State = StateTesting
	for _, idx := range candidates {
		sel.Tested++
		ok, err := t.clauses[idx].test(args)
		if err != nil {
			return sel, err
		}
		if ok {
			sel.State = StateMatched
			sel.Clause = idx
			sel.Bound = t.clauses[idx].bind(args)
			return sel, nil
		}
	}

	sel.State = StateExhausted
	return sel, nil
}

// Call dispatches args to the first matching clause and returns its
// handler's result. Handler errors propagate unchanged.
func (t *Table) Call(args ...any) (any, error) {
	sel, err := t.Select(args...)
	if err != nil {
		return nil, err
	}
	if sel.State != StateMatched {
		return nil, &IncompletePatternMatchError{
			Table:      t.name,
			Args:       len(args),
			Candidates: sel.Candidates,
		}
	}
	return t.clauses[sel.Clause].handler.Call(sel.Bound...)
}

// Explain is Select with an error for exhausted tables, for callers that
// want to show which clause a call would take.
func (t *Table) Explain(args ...any) (Selection, error) {
	sel, err := t.Select(args...)
	if err != nil {
		return sel, err
	}
	if sel.State != StateMatched {
		return sel, &IncompletePatternMatchError{Table: t.name, Args: len(args), Candidates: sel.Candidates}
	}
	return sel, nil
}

// String renders the table header.
func (t *Table) String() string {
	name := t.name
	if name == "" {
		name = "match"
	}
	return fmt.Sprintf("<table %s %d clause(s)>", name, len(t.clauses))
}
