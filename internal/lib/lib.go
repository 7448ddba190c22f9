// Package lib assembles the standard catalog of utility modules.
package lib

import (
	"github.com/roach88/vector/internal/lib/lambda"
	"github.com/roach88/vector/internal/lib/logic"
	"github.com/roach88/vector/internal/registry"
)

// Modules returns the standard registries in a stable order.
func Modules() ([]*registry.Registry, error) {
	sources := []struct {
		name string
		defs []registry.Definition
	}{
		{lambda.Name, lambda.Module()},
		{logic.Name, logic.Module()},
	}

	out := make([]*registry.Registry, 0, len(sources))
	for _, s := range sources {
		r, err := registry.New(s.name, s.defs...)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Catalog returns a fresh catalog of the standard modules.
// Each call builds new registries with their own wrapper caches.
func Catalog() (*registry.Catalog, error) {
	mods, err := Modules()
	if err != nil {
		return nil, err
	}
	return registry.NewCatalog(mods...)
}
