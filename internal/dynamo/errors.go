package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for model and simulation operations.
var (
	// ErrNonFinite indicates the solver produced a NaN or Inf state.
	ErrNonFinite = errors.New("dynamo: non-finite state (NaN or Inf detected)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the step budget was exhausted before t_stop.
	ErrMaxSteps = errors.New("dynamo: maximum step count exceeded")

	// ErrCanceled indicates the simulation was interrupted by its context.
	ErrCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates mismatched vector lengths.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrInvalidModel indicates a model definition that cannot be simulated.
	ErrInvalidModel = errors.New("dynamo: invalid model definition")

	// ErrInvalidRequest indicates a malformed simulation request.
	ErrInvalidRequest = errors.New("dynamo: invalid simulation request")

	// ErrUnknownParameter indicates a parameter name the model does not define.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrSingular indicates the implicit solver hit a singular iteration matrix.
	ErrSingular = errors.New("dynamo: singular iteration matrix")
)

// SimulationError wraps an integration failure with the point it was reached.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
