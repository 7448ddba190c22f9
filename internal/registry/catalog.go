package registry

import (
	"sort"
	"strings"

	"github.com/roach88/vector/internal/curry"
)

// Catalog is an ordered set of registries addressed by qualified names.
//
// A qualified name is "module.name". The module part is everything before
// the first dot, so definitions may themselves contain dots.
type Catalog struct {
	order   []string
	modules map[string]*Registry
}

// NewCatalog groups regs, failing on a repeated module name.
func NewCatalog(regs ...*Registry) (*Catalog, error) {
	c := &Catalog{modules: make(map[string]*Registry, len(regs))}
	for _, r := range regs {
		if err := c.add(r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// With returns a new catalog extended by regs. The receiver is unchanged.
func (c *Catalog) With(regs ...*Registry) (*Catalog, error) {
	all := make([]*Registry, 0, len(c.order)+len(regs))
	for _, m := range c.order {
		all = append(all, c.modules[m])
	}
	return NewCatalog(append(all, regs...)...)
}

func (c *Catalog) add(r *Registry) error {
	if _, dup := c.modules[r.Module()]; dup {
		return &DuplicateDefinitionError{Module: r.Module()}
	}
	c.modules[r.Module()] = r
	c.order = append(c.order, r.Module())
	return nil
}

// Modules returns module names in the order they were added.
func (c *Catalog) Modules() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Module returns the registry named module.
func (c *Catalog) Module(module string) (*Registry, bool) {
	r, ok := c.modules[module]
	return r, ok
}

// Split separates a qualified name into module and local name.
func Split(qualified string) (module, name string, ok bool) {
	module, name, ok = strings.Cut(qualified, ".")
	if !ok || module == "" || name == "" {
		return "", "", false
	}
	return module, name, true
}

// Has reports whether qualified names a definition.
func (c *Catalog) Has(qualified string) bool {
	module, name, ok := Split(qualified)
	if !ok {
		return false
	}
	r, ok := c.modules[module]
	return ok && r.Has(name)
}

// Resolve returns the wrapper for a qualified name.
func (c *Catalog) Resolve(qualified string) (*curry.Curried, error) {
	module, name, ok := Split(qualified)
	if !ok {
		return nil, &UndefinedNameError{Name: qualified}
	}
	r, ok := c.modules[module]
	if !ok {
		return nil, &UndefinedNameError{Module: module, Name: name}
	}
	return r.Resolve(name)
}

// Call resolves a qualified name and applies args.
func (c *Catalog) Call(qualified string, args ...any) (any, error) {
	fn, err := c.Resolve(qualified)
	if err != nil {
		return nil, err
	}
	return fn.Call(args...)
}

// Names returns every qualified name, sorted.
func (c *Catalog) Names() []string {
	var out []string
	for _, m := range c.order {
		for _, n := range c.modules[m].Names() {
			out = append(out, m+"."+n)
		}
	}
	sort.Strings(out)
	return out
}
