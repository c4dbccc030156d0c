package rnode

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrTypeExists   = errors.New("node type already registered")
	ErrReservedType = errors.New("node type is reserved")
	ErrInvalidType  = errors.New("invalid node type")
)

// Registry maps node types to factories.
//
// Registry is NOT safe for concurrent use.
type Registry struct {
	factories map[Type]Factory
	order     []Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: map[Type]Factory{},
	}
}

// Register adds a factory for typ.
func (r *Registry) Register(typ Type, f Factory) error {
	if typ == "" || f == nil {
		return fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	if typ == TypeOutput {
		return fmt.Errorf("%w: %q", ErrReservedType, typ)
	}
	if _, ok := r.factories[typ]; ok {
		return fmt.Errorf("%w: %q", ErrTypeExists, typ)
	}
	r.factories[typ] = f
	r.order = append(r.order, typ)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(typ Type, f Factory) {
	if err := r.Register(typ, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory of typ.
func (r *Registry) Lookup(typ Type) (Factory, bool) {
	f, ok := r.factories[typ]
	return f, ok
}

// Types returns all registered types in registration order.
func (r *Registry) Types() []Type {
	return slices.Clone(r.order)
}
