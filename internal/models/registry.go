package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/odedash/internal/dynamo"
)

// DefaultModel is the model opened when none is named.
const DefaultModel = "cellcycle"

type Registry struct {
	models map[string]func() (*dynamo.Model, error)
}

// NewRegistry returns a registry holding the built-in models.
func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]func() (*dynamo.Model, error))}
	r.Register("cellcycle", NewCellCycle)
	r.Register("repressilator", NewRepressilator)
	return r
}

// Register adds or replaces a model constructor.
func (r *Registry) Register(name string, fn func() (*dynamo.Model, error)) {
	r.models[name] = fn
}

// Get builds and validates the named model.
func (r *Registry) Get(name string) (*dynamo.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s (available: %v)", name, r.List())
	}
	return fn()
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
