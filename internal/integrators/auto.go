package integrators

import (
	"github.com/san-kum/odedash/internal/dynamo"
)

const (
	// stabilityBoundary approximates where the RK45 stability region meets
	// the negative real axis.
	stabilityBoundary = 3.25
	// stiffStreak consecutive accepted steps at the boundary switch to the
	// implicit method; nonStiffReset calm steps clear the streak.
	stiffStreak   = 15
	nonStiffReset = 6
	// explicitStreak consecutive steps where RK45 would be stable again
	// switch back to the explicit method.
	explicitStreak = 15
)

// Auto switches between RK45 and Rosenbrock depending on whether the
// problem currently looks stiff, in the manner of LSODA. It starts with
// the explicit method.
type Auto struct {
	explicit *RK45
	implicit *Rosenbrock

	stiff    bool
	stiffRun int
	calmRun  int
	backRun  int
	switches int

	onSwitch func(t float64, stiff bool)
}

func NewAuto() *Auto {
	return &Auto{
		explicit: NewRK45(),
		implicit: NewRosenbrock(),
	}
}

// OnSwitch registers a callback invoked after every method change.
func (a *Auto) OnSwitch(fn func(t float64, stiff bool)) { a.onSwitch = fn }

func (a *Auto) Name() string { return "auto" }

func (a *Auto) Order() int {
	if a.stiff {
		return a.implicit.Order()
	}
	return a.explicit.Order()
}

func (a *Auto) Stiff() bool              { return a.stiff }
func (a *Auto) Switches() int            { return a.switches }
func (a *Auto) JacobianEvaluations() int { return a.implicit.JacobianEvaluations() }

func (a *Auto) Step(dyn dynamo.System, t float64, x, dx dynamo.State, h float64, tol dynamo.Tolerance) (dynamo.Attempt, error) {
	if a.stiff {
		return a.implicit.Step(dyn, t, x, dx, h, tol)
	}
	return a.explicit.Step(dyn, t, x, dx, h, tol)
}

func (a *Auto) Accept(dyn dynamo.System, t, h float64, x dynamo.State) dynamo.State {
	if a.stiff {
		fx := a.implicit.Accept(dyn, t, h, x)
		if h*a.implicit.JacobianNorm() < stabilityBoundary {
			a.backRun++
			if a.backRun >= explicitStreak {
				a.switchTo(false, t)
			}
		} else {
			a.backRun = 0
		}
		return fx
	}

	fx := a.explicit.Accept(dyn, t, h, x)
	if a.explicit.HLambda() > stabilityBoundary {
		a.calmRun = 0
		a.stiffRun++
		if a.stiffRun >= stiffStreak {
			a.switchTo(true, t)
		}
	} else {
		a.calmRun++
		if a.calmRun >= nonStiffReset {
			a.stiffRun = 0
		}
	}
	return fx
}

func (a *Auto) switchTo(stiff bool, t float64) {
	a.stiff = stiff
	a.stiffRun, a.calmRun, a.backRun = 0, 0, 0
	a.switches++
	if a.onSwitch != nil {
		a.onSwitch(t, stiff)
	}
}
