package dynamo

import (
	"fmt"
	"math"
)

// Variable is one component of the state vector.
type Variable struct {
	Name string  `json:"name" yaml:"name"`
	Init float64 `json:"init" yaml:"init"`
}

// Parameter is a named model constant with the range a UI may offer.
type Parameter struct {
	Name string  `json:"name" yaml:"name"`
	Init float64 `json:"init" yaml:"init"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
}

// Step returns the slider increment for the parameter range.
func (p Parameter) Step() float64 {
	return (p.Max - p.Min) / 1000
}

// Clamp limits v to [Min, Max].
func (p Parameter) Clamp(v float64) float64 {
	return math.Max(p.Min, math.Min(p.Max, v))
}

// DerivFunc maps (t, x, p) to dx/dt. The returned vector has the same
// ordering as x.
type DerivFunc func(t float64, x State, p ParameterSet) State

// Model is a validated, immutable ODE model definition.
type Model struct {
	name        string
	description string
	variables   []Variable
	parameters  []Parameter
	equations   DerivFunc

	varIndex   map[string]int
	paramIndex map[string]int
}

// NewModel validates the definition and returns the model. Every structural
// problem is reported here rather than at simulation time: duplicate or
// empty names, non-finite values, inverted bounds, and a derivative
// function that returns the wrong length or reads an undefined parameter.
func NewModel(name, description string, vars []Variable, params []Parameter, f DerivFunc) (*Model, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty model name", ErrInvalidModel)
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("%w: model %s has no variables", ErrInvalidModel, name)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: model %s has no equations", ErrInvalidModel, name)
	}

	m := &Model{
		name:        name,
		description: description,
		variables:   append([]Variable(nil), vars...),
		parameters:  append([]Parameter(nil), params...),
		equations:   f,
		varIndex:    make(map[string]int, len(vars)),
		paramIndex:  make(map[string]int, len(params)),
	}

	for i, v := range m.variables {
		if v.Name == "" {
			return nil, fmt.Errorf("%w: variable %d has no name", ErrInvalidModel, i)
		}
		if _, dup := m.varIndex[v.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate variable %q", ErrInvalidModel, v.Name)
		}
		if !isFinite(v.Init) {
			return nil, fmt.Errorf("%w: variable %q has non-finite initial value", ErrInvalidModel, v.Name)
		}
		m.varIndex[v.Name] = i
	}

	for i, p := range m.parameters {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: parameter %d has no name", ErrInvalidModel, i)
		}
		if _, dup := m.paramIndex[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter %q", ErrInvalidModel, p.Name)
		}
		if !isFinite(p.Init) || !isFinite(p.Min) || !isFinite(p.Max) {
			return nil, fmt.Errorf("%w: parameter %q has non-finite bounds", ErrInvalidModel, p.Name)
		}
		if p.Min > p.Max {
			return nil, fmt.Errorf("%w: parameter %q has min %g > max %g", ErrInvalidModel, p.Name, p.Min, p.Max)
		}
		if p.Init < p.Min || p.Init > p.Max {
			return nil, fmt.Errorf("%w: parameter %q init %g outside [%g, %g]", ErrInvalidModel, p.Name, p.Init, p.Min, p.Max)
		}
		m.paramIndex[p.Name] = i
	}

	if err := m.trialEval(); err != nil {
		return nil, err
	}
	return m, nil
}

// trialEval evaluates the derivative once at the defaults so that length and
// naming mistakes in the equations surface at load time.
func (m *Model) trialEval() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: model %s equations panicked: %v", ErrInvalidModel, m.name, r)
		}
	}()

	dx := m.equations(0, m.InitialState(), m.Defaults())
	if len(dx) != len(m.variables) {
		return fmt.Errorf("%w: model %s returns %d derivatives for %d variables",
			ErrInvalidModel, m.name, len(dx), len(m.variables))
	}
	return nil
}

func (m *Model) Name() string        { return m.name }
func (m *Model) Description() string { return m.description }
func (m *Model) Dim() int            { return len(m.variables) }
func (m *Model) NumParams() int      { return len(m.parameters) }

// Variables returns a copy of the ordered variable definitions.
func (m *Model) Variables() []Variable {
	return append([]Variable(nil), m.variables...)
}

// Parameters returns a copy of the ordered parameter definitions.
func (m *Model) Parameters() []Parameter {
	return append([]Parameter(nil), m.parameters...)
}

// VariableNames returns the state ordering.
func (m *Model) VariableNames() []string {
	names := make([]string, len(m.variables))
	for i, v := range m.variables {
		names[i] = v.Name
	}
	return names
}

// ParameterNames returns the parameter ordering.
func (m *Model) ParameterNames() []string {
	names := make([]string, len(m.parameters))
	for i, p := range m.parameters {
		names[i] = p.Name
	}
	return names
}

// VariableIndex resolves a variable name to its state index.
func (m *Model) VariableIndex(name string) (int, bool) {
	i, ok := m.varIndex[name]
	return i, ok
}

// Parameter looks up a parameter definition by name.
func (m *Model) Parameter(name string) (Parameter, bool) {
	i, ok := m.paramIndex[name]
	if !ok {
		return Parameter{}, false
	}
	return m.parameters[i], true
}

// InitialState returns a fresh copy of the initial state vector.
func (m *Model) InitialState() State {
	x := make(State, len(m.variables))
	for i, v := range m.variables {
		x[i] = v.Init
	}
	return x
}

// InitialStateFromMap overrides initial values by variable name.
func (m *Model) InitialStateFromMap(overrides map[string]float64) (State, error) {
	x := m.InitialState()
	for name, v := range overrides {
		i, ok := m.varIndex[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown variable %q for model %s", ErrInvalidRequest, name, m.name)
		}
		x[i] = v
	}
	return x, nil
}

// Equations returns the raw derivative function.
func (m *Model) Equations() DerivFunc { return m.equations }

// Bind fixes a parameter set and returns the resulting System.
func (m *Model) Bind(p ParameterSet) System {
	return &boundModel{m: m, p: p}
}

type boundModel struct {
	m *Model
	p ParameterSet
}

func (b *boundModel) Derive(t float64, x State) State { return b.m.equations(t, x, b.p) }
func (b *boundModel) Dim() int                        { return len(b.m.variables) }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
