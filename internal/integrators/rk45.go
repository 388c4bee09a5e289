package integrators

import (
	"math"

	"github.com/san-kum/odedash/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the explicit Dormand-Prince 5(4) pair. Besides the error
// estimate it measures h*|lambda| along the step, which the Auto stepper
// uses to detect stiffness.
type RK45 struct {
	x2, x3, x4, x5, x6 dynamo.State
	errEst             dynamo.State

	k7      dynamo.State
	hLambda float64
}

func NewRK45() *RK45 {
	return &RK45{}
}

func (r *RK45) Name() string { return "rk45" }
func (r *RK45) Order() int   { return 5 }

func (r *RK45) ensureScratch(n int) {
	if len(r.x2) != n {
		r.x2 = make(dynamo.State, n)
		r.x3 = make(dynamo.State, n)
		r.x4 = make(dynamo.State, n)
		r.x5 = make(dynamo.State, n)
		r.x6 = make(dynamo.State, n)
		r.errEst = make(dynamo.State, n)
	}
}

func (r *RK45) Step(dyn dynamo.System, t float64, x, k1 dynamo.State, dt float64, tol dynamo.Tolerance) (dynamo.Attempt, error) {
	n := len(x)
	r.ensureScratch(n)

	for i := 0; i < n; i++ {
		r.x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := dyn.Derive(t+a2*dt, r.x2)

	for i := 0; i < n; i++ {
		r.x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(t+a3*dt, r.x3)

	for i := 0; i < n; i++ {
		r.x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(t+a4*dt, r.x4)

	for i := 0; i < n; i++ {
		r.x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(t+a5*dt, r.x5)

	for i := 0; i < n; i++ {
		r.x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(t+dt, r.x6)

	// xNew escapes to the caller, so it is never reused as scratch.
	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := dyn.Derive(t+dt, xNew)

	for i := 0; i < n; i++ {
		r.errEst[i] = dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
	}

	// k6 and k7 are both evaluated at t+dt; their difference over the
	// state difference approximates the dominant eigenvalue.
	stNum, stDen := 0.0, 0.0
	for i := 0; i < n; i++ {
		dk := k7[i] - k6[i]
		dx := xNew[i] - r.x6[i]
		stNum += dk * dk
		stDen += dx * dx
	}
	r.hLambda = 0
	if stDen > 0 {
		r.hLambda = dt * math.Sqrt(stNum/stDen)
	}

	r.k7 = k7
	return dynamo.Attempt{X: xNew, ErrNorm: tol.ErrorNorm(r.errEst, x, xNew)}, nil
}

// Accept returns the first-same-as-last stage of the accepted step.
func (r *RK45) Accept(dyn dynamo.System, t, h float64, x dynamo.State) dynamo.State {
	return r.k7
}

// HLambda returns the stiffness indicator of the last attempted step.
func (r *RK45) HLambda() float64 { return r.hLambda }
