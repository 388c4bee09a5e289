// Package dynamo provides core simulation primitives for ODE models.
//
// The package defines the fundamental types shared by the solver, the
// simulation driver and the presentation layers:
//
//   - [State]: vector representing system state
//   - [Model]: ordered variables, bounded parameters and a derivative function
//   - [ParameterSet]: immutable named parameter assignment
//   - [System]: a model bound to one parameter set (dX/dt = f(t, X))
//   - [Stepper]: adaptive integrator interface
//   - [Trajectory]: sampled solution of one simulation request
//
// # Example
//
//	m, _ := models.CellCycle()
//	ps, _ := m.Params(values)
//	sys := m.Bind(ps)
//	dx := sys.Derive(0, m.InitialState())
//
// # Thread Safety
//
// Model and ParameterSet are immutable after construction and safe for
// concurrent use. Steppers carry per-run scratch state and must not be
// shared between goroutines.
package dynamo
