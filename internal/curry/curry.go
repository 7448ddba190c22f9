package curry

import (
	"fmt"

	"github.com/roach88/vector/internal/arity"
)

// Curried is an immutable partial application of a target callable.
//
// INVARIANT: len(applied) < arity until the wrapper fires.
type Curried struct {
	target  Callable
	arity   int
	applied []any
	name    string
}

// Option configures New.
type Option func(*options)

type options struct {
	arity     int
	haveArity bool
	name      string
	inspector *arity.Inspector
}

// WithArity sets the arity verbatim, bypassing inspection.
// Use it for host callables that cannot be reflected.
func WithArity(n int) Option {
	return func(o *options) {
		o.arity = n
		o.haveArity = true
	}
}

// WithName labels the wrapper for diagnostics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithInspector uses a specific arity inspector instead of the default.
func WithInspector(in *arity.Inspector) Option {
	return func(o *options) {
		o.inspector = in
	}
}

// New wraps fn in a curried wrapper.
//
// fn may be a Go func value, a Callable, or an existing *Curried (which is
// returned unchanged unless an explicit arity or name is requested).
// Fails with *arity.NonIntrospectableCallableError when the arity cannot
// be determined or fn cannot be called at all.
func New(fn any, opts ...Option) (*Curried, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if c, ok := fn.(*Curried); ok && !o.haveArity && o.name == "" {
		return c, nil
	}

	target, ok := adapt(fn)
	if !ok {
		return nil, &arity.NonIntrospectableCallableError{
			Type:   fmt.Sprintf("%T", fn),
			Reason: "value is not callable",
		}
	}

	n := o.arity
	if !o.haveArity {
		var err error
		if o.inspector != nil {
			n, err = o.inspector.Of(fn)
		} else {
			n, err = arity.Of(fn)
		}
		if err != nil {
			return nil, err
		}
	}
	if n < 0 {
		return nil, &arity.NonIntrospectableCallableError{
			Type:   fmt.Sprintf("%T", fn),
			Reason: fmt.Sprintf("negative arity %d", n),
		}
	}

	return &Curried{target: target, arity: n, name: o.name}, nil
}

// Must is like New but panics on error.
// Use only in tests or for package-level tables known to be valid.
func Must(fn any, opts ...Option) *Curried {
	c, err := New(fn, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Call applies args.
//
// The result is either the target's result (once saturated) or a new
// *Curried awaiting the remaining arguments. The receiver is never
// modified.
func (c *Curried) Call(args ...any) (any, error) {
	switch {
	case c.arity == 0:
		return c.target.Call(args...)
	case len(args) == 0:
		return c, nil
	}

	total := len(c.applied) + len(args)
	if total < c.arity {
		next := make([]any, 0, total)
		next = append(next, c.applied...)
		next = append(next, args...)
		return &Curried{target: c.target, arity: c.arity, applied: next, name: c.name}, nil
	}

	all := make([]any, 0, c.arity)
	all = append(all, c.applied...)
	all = append(all, args[:c.arity-len(c.applied)]...)
	return c.target.Call(all...)
}

// Arity returns the number of arguments still needed before the target fires.
func (c *Curried) Arity() int {
	return c.arity - len(c.applied)
}

// Applied returns a copy of the accumulated arguments.
func (c *Curried) Applied() []any {
	out := make([]any, len(c.applied))
	copy(out, c.applied)
	return out
}

// Name returns the diagnostic label.
func (c *Curried) Name() string {
	return c.name
}

// String renders the wrapper as <curried name k/N>.
func (c *Curried) String() string {
	name := c.name
	if name == "" {
		name = "fn"
	}
	return fmt.Sprintf("<curried %s %d/%d>", name, len(c.applied), c.arity)
}

// Invoke calls any callable value with args.
//
// *Curried and Callable values are called directly. Plain funcs are
// wrapped first, so Invoke(f, a) on a binary f yields a partial
// application rather than an error.
func Invoke(fn any, args ...any) (any, error) {
	switch f := fn.(type) {
	case *Curried:
		return f.Call(args...)
	case Callable:
		return f.Call(args...)
	}

	c, err := New(fn)
	if err != nil {
		return nil, err
	}
	return c.Call(args...)
}

// Apply feeds successive argument batches to fn, one call per batch.
// Apply(f, [a], [b]) == f(a)(b).
func Apply(fn any, batches ...[]any) (any, error) {
	result := fn
	for i, batch := range batches {
		next, err := Invoke(result, batch...)
		if err != nil {
			return nil, err
		}
		if i < len(batches)-1 && !IsCallable(next) {
			return nil, fmt.Errorf("batch %d: result %T is not callable", i+1, next)
		}
		result = next
	}
	return result, nil
}

// IsCallable reports whether v can be passed to Invoke.
func IsCallable(v any) bool {
	_, ok := adapt(v)
	return ok
}
