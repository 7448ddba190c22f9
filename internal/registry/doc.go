// Package registry maps names to curried callables.
//
// A Registry is built once from an ordered list of definitions and is
// read-only afterwards. Resolving a name returns a curried wrapper around
// the definition, built on first use and shared by every later resolve.
//
//	reg, err := registry.New("logic",
//		registry.Def("not", func(b bool) bool { return !b }),
//	)
//	not, err := reg.Resolve("not")
//
// A Catalog groups registries and addresses definitions by qualified
// name ("logic.not").
package registry
