package registry

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when a Builder is used after Build.
var ErrClosed = errors.New("registry: builder already built")

// DuplicateDefinitionError is returned when a name is defined twice in a
// module, or a module twice in a catalog.
type DuplicateDefinitionError struct {
	Module string
	Name   string
}

// Error implements the error interface.
func (e *DuplicateDefinitionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("duplicate module %q", e.Module)
	}
	return fmt.Sprintf("duplicate definition %q in module %q", e.Name, e.Module)
}

// UndefinedNameError is returned when resolving a name that was never
// defined.
type UndefinedNameError struct {
	Module string
	Name   string
}

// Error implements the error interface.
func (e *UndefinedNameError) Error() string {
	if e.Module == "" {
		return fmt.Sprintf("undefined name %q", e.Name)
	}
	return fmt.Sprintf("undefined name %q in module %q", e.Name, e.Module)
}

// IsDuplicateDefinition returns true if err is (or wraps) a
// DuplicateDefinitionError.
func IsDuplicateDefinition(err error) bool {
	var de *DuplicateDefinitionError
	return errors.As(err, &de)
}

// IsUndefinedName returns true if err is (or wraps) an UndefinedNameError.
func IsUndefinedName(err error) bool {
	var ue *UndefinedNameError
	return errors.As(err, &ue)
}
