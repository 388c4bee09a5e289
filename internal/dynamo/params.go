package dynamo

import (
	"fmt"
)

// ParameterSet is an immutable assignment of values to a model's
// parameters. The zero value is an empty set.
type ParameterSet struct {
	names  []string
	index  map[string]int
	values []float64
}

// Params converts positional values, ordered like the model's parameters,
// into a ParameterSet. Values are not checked against the bounds.
func (m *Model) Params(values []float64) (ParameterSet, error) {
	if len(values) != len(m.parameters) {
		return ParameterSet{}, fmt.Errorf("%w: model %s expects %d parameter values, got %d",
			ErrDimensionMismatch, m.name, len(m.parameters), len(values))
	}
	return m.newSet(append([]float64(nil), values...)), nil
}

// Defaults returns the parameter set built from every parameter's Init.
func (m *Model) Defaults() ParameterSet {
	values := make([]float64, len(m.parameters))
	for i, p := range m.parameters {
		values[i] = p.Init
	}
	return m.newSet(values)
}

// ParamsFromMap starts from the defaults and overrides values by name.
func (m *Model) ParamsFromMap(overrides map[string]float64) (ParameterSet, error) {
	ps := m.Defaults()
	for name, v := range overrides {
		i, ok := m.paramIndex[name]
		if !ok {
			return ParameterSet{}, fmt.Errorf("%w: %q for model %s", ErrUnknownParameter, name, m.name)
		}
		ps.values[i] = v
	}
	return ps, nil
}

func (m *Model) newSet(values []float64) ParameterSet {
	return ParameterSet{
		names:  m.ParameterNames(),
		index:  m.paramIndex,
		values: values,
	}
}

// Value returns the named parameter. Equations use it the way attribute
// access is used in a model file; an unknown name is a programming error in
// the equations and panics, which NewModel turns into ErrInvalidModel.
func (p ParameterSet) Value(name string) float64 {
	i, ok := p.index[name]
	if !ok {
		panic(fmt.Sprintf("dynamo: parameter %q is not defined", name))
	}
	return p.values[i]
}

// Lookup returns the named parameter and whether it exists.
func (p ParameterSet) Lookup(name string) (float64, bool) {
	i, ok := p.index[name]
	if !ok {
		return 0, false
	}
	return p.values[i], true
}

// At returns the i-th parameter in model order.
func (p ParameterSet) At(i int) float64 { return p.values[i] }

func (p ParameterSet) Len() int { return len(p.values) }

// Names returns the parameter ordering.
func (p ParameterSet) Names() []string {
	return append([]string(nil), p.names...)
}

// Values returns a copy of the positional values.
func (p ParameterSet) Values() []float64 {
	return append([]float64(nil), p.values...)
}

// Map returns the assignment keyed by name.
func (p ParameterSet) Map() map[string]float64 {
	out := make(map[string]float64, len(p.values))
	for i, name := range p.names {
		out[name] = p.values[i]
	}
	return out
}

// With returns a copy of p with one value replaced.
func (p ParameterSet) With(name string, v float64) (ParameterSet, error) {
	i, ok := p.index[name]
	if !ok {
		return ParameterSet{}, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	values := p.Values()
	values[i] = v
	return ParameterSet{names: p.names, index: p.index, values: values}, nil
}
