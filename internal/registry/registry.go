package registry

import (
	"sync"

	"github.com/roach88/vector/internal/curry"
)

// Definition is one (name, function) pair supplied at construction.
type Definition struct {
	Name string
	Fn   any

	// Arity overrides inspection when non-nil. Required for host callables
	// that cannot report their own arity.
	Arity *int

	// Doc is a one-line description shown by listings.
	Doc string
}

// Def defines name as fn with inspected arity.
func Def(name string, fn any) Definition {
	return Definition{Name: name, Fn: fn}
}

// DefArity defines name as fn with an explicit arity.
func DefArity(name string, n int, fn any) Definition {
	return Definition{Name: name, Fn: fn, Arity: &n}
}

// WithDoc returns a copy of d carrying doc.
func (d Definition) WithDoc(doc string) Definition {
	d.Doc = doc
	return d
}

// entry holds one definition and its lazily built wrapper.
type entry struct {
	def  Definition
	once sync.Once
	fn   *curry.Curried
	err  error
}

// Registry is an immutable name to callable mapping with a compute-once
// wrapper cache.
//
// Thread-safety: Registry is safe for concurrent use. Each wrapper is
// built at most once; concurrent resolves of the same name block until
// it exists.
type Registry struct {
	module  string
	order   []string
	entries map[string]*entry
}

// New builds a registry for module from defs.
// Fails with *DuplicateDefinitionError if a name repeats.
func New(module string, defs ...Definition) (*Registry, error) {
	r := &Registry{
		module:  module,
		order:   make([]string, 0, len(defs)),
		entries: make(map[string]*entry, len(defs)),
	}
	for _, d := range defs {
		if _, dup := r.entries[d.Name]; dup {
			return nil, &DuplicateDefinitionError{Module: module, Name: d.Name}
		}
		r.entries[d.Name] = &entry{def: d}
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(module string, defs ...Definition) *Registry {
	r, err := New(module, defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Module returns the module name.
func (r *Registry) Module() string {
	return r.module
}

// Names returns the defined names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Has reports whether name is defined.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Definition returns the raw definition of name.
func (r *Registry) Definition(name string) (Definition, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Definition{}, false
	}
	return e.def, true
}

// Resolve returns the curried wrapper for name.
//
// The wrapper is built on first resolve and the same pointer is returned
// afterwards. A wrap failure (non-introspectable definition) is cached and
// returned by every resolve.
func (r *Registry) Resolve(name string) (*curry.Curried, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, &UndefinedNameError{Module: r.module, Name: name}
	}

	e.once.Do(func() {
		opts := []curry.Option{curry.WithName(r.qualify(name))}
		if e.def.Arity != nil {
			opts = append(opts, curry.WithArity(*e.def.Arity))
		}
		e.fn, e.err = curry.New(e.def.Fn, opts...)
	})
	return e.fn, e.err
}

// MustResolve is like Resolve but panics on error.
func (r *Registry) MustResolve(name string) *curry.Curried {
	fn, err := r.Resolve(name)
	if err != nil {
		panic(err)
	}
	return fn
}

// Call resolves name and applies args.
func (r *Registry) Call(name string, args ...any) (any, error) {
	fn, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return fn.Call(args...)
}

// Arity reports the arity of name.
func (r *Registry) Arity(name string) (int, error) {
	fn, err := r.Resolve(name)
	if err != nil {
		return 0, err
	}
	return fn.Arity(), nil
}

func (r *Registry) qualify(name string) string {
	if r.module == "" {
		return name
	}
	return r.module + "." + name
}

// Builder accumulates definitions incrementally.
//
// Thread-safety: Builder is NOT safe for concurrent use.
type Builder struct {
	module string
	defs   []Definition
	seen   map[string]bool
	built  bool
}

// NewBuilder starts a registry for module.
func NewBuilder(module string) *Builder {
	return &Builder{module: module, seen: make(map[string]bool)}
}

// Define adds name with inspected arity.
func (b *Builder) Define(name string, fn any) error {
	return b.add(Def(name, fn))
}

// DefineArity adds name with an explicit arity.
func (b *Builder) DefineArity(name string, n int, fn any) error {
	return b.add(DefArity(name, n, fn))
}

// Add adds a prepared definition.
func (b *Builder) Add(d Definition) error {
	return b.add(d)
}

func (b *Builder) add(d Definition) error {
	if b.built {
		return ErrClosed
	}
	if b.seen[d.Name] {
		return &DuplicateDefinitionError{Module: b.module, Name: d.Name}
	}
	b.seen[d.Name] = true
	b.defs = append(b.defs, d)
	return nil
}

// Build freezes the builder into a Registry.
// Further Define calls fail with ErrClosed.
func (b *Builder) Build() (*Registry, error) {
	if b.built {
		return nil, ErrClosed
	}
	b.built = true
	return New(b.module, b.defs...)
}
