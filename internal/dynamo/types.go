package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbs returns the infinity norm of s.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// System is a model bound to a single parameter set.
type System interface {
	Derive(t float64, x State) State
	Dim() int
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc struct {
	N int
	F func(t float64, x State) State
}

func (s SystemFunc) Derive(t float64, x State) State { return s.F(t, x) }
func (s SystemFunc) Dim() int                        { return s.N }

// Tolerance holds the mixed error tolerance atol + rtol*|y|.
type Tolerance struct {
	Rel float64
	Abs float64
}

// Scale returns the per-component error weight for old and new values.
func (tol Tolerance) Scale(y, yNew float64) float64 {
	return tol.Abs + tol.Rel*math.Max(math.Abs(y), math.Abs(yNew))
}

// ErrorNorm returns the weighted RMS norm of errEst. A value <= 1 means the
// step satisfies the tolerance.
func (tol Tolerance) ErrorNorm(errEst, y, yNew State) float64 {
	if len(errEst) == 0 {
		return 0
	}
	sum := 0.0
	for i := range errEst {
		r := errEst[i] / tol.Scale(y[i], yNew[i])
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(errEst)))
}

// Attempt is the outcome of one trial step.
type Attempt struct {
	X       State   // candidate state at t+h
	ErrNorm float64 // weighted error norm, accept when <= 1
}

// Stepper performs single adaptive trial steps. Implementations may keep
// scratch state between calls, so a Stepper belongs to exactly one run.
type Stepper interface {
	Name() string
	// Order is the exponent used by the step size controller.
	Order() int
	// Step tries to advance (t, x) by h. dx is f(t, x), already evaluated.
	Step(sys System, t float64, x, dx State, h float64, tol Tolerance) (Attempt, error)
	// Accept notifies the stepper that its last attempt, of size h, became
	// the solution point (t, x). It returns f(t, x) when that is already
	// known and nil otherwise.
	Accept(sys System, t, h float64, x State) State
}

// JacobianCounter is implemented by steppers that form Jacobians.
type JacobianCounter interface {
	JacobianEvaluations() int
}

// Switcher is implemented by steppers that change method during a run.
type Switcher interface {
	Stiff() bool
	Switches() int
}
