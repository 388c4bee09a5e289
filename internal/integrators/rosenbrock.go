package integrators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/odedash/internal/dynamo"
)

// ROS2 coefficients (Verwer et al.), L-stable, order 2 with an embedded
// linearly-implicit Euler solution for the error estimate. The stages carry
// the gamma*h*df/dt terms of the non-autonomous form.
var ros2Gamma = 1.0 + 1.0/math.Sqrt2

// Rosenbrock is a linearly-implicit solver for stiff systems. It needs one
// Jacobian and one LU factorization per attempted step; the Jacobian is
// reused across rejected attempts from the same point.
type Rosenbrock struct {
	jac      *mat.Dense
	ft       dynamo.State
	jacNorm  float64
	jacValid bool
	jacEvals int

	w  *mat.Dense
	lu mat.LU

	rhs, k1, k2 *mat.VecDense
}

func NewRosenbrock() *Rosenbrock {
	return &Rosenbrock{}
}

func (r *Rosenbrock) Name() string { return "rosenbrock" }
func (r *Rosenbrock) Order() int   { return 2 }

func (r *Rosenbrock) ensureScratch(n int) {
	if r.jac == nil || r.jac.RawMatrix().Rows != n {
		r.jac = mat.NewDense(n, n, nil)
		r.w = mat.NewDense(n, n, nil)
		r.rhs = mat.NewVecDense(n, nil)
		r.k1 = mat.NewVecDense(n, nil)
		r.k2 = mat.NewVecDense(n, nil)
		r.ft = make(dynamo.State, n)
		r.jacValid = false
	}
}

func (r *Rosenbrock) Step(dyn dynamo.System, t float64, x, fx dynamo.State, h float64, tol dynamo.Tolerance) (dynamo.Attempt, error) {
	n := len(x)
	r.ensureScratch(n)

	if !r.jacValid {
		r.jacobian(dyn, t, x, fx)
	}

	// W = I - gamma*h*J
	gh := ros2Gamma * h
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := -gh * r.jac.At(i, j)
			if i == j {
				v += 1
			}
			r.w.Set(i, j, v)
		}
	}
	r.lu.Factorize(r.w)
	if math.IsInf(r.lu.Cond(), 1) {
		return dynamo.Attempt{}, fmt.Errorf("%w at t=%g, h=%g", dynamo.ErrSingular, t, h)
	}

	for i := 0; i < n; i++ {
		r.rhs.SetVec(i, fx[i]+gh*r.ft[i])
	}
	if err := r.lu.SolveVecTo(r.k1, false, r.rhs); err != nil {
		return dynamo.Attempt{}, fmt.Errorf("%w: %v", dynamo.ErrSingular, err)
	}

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + h*r.k1.AtVec(i)
	}
	f2 := dyn.Derive(t+h, x2)

	for i := 0; i < n; i++ {
		r.rhs.SetVec(i, f2[i]-2*r.k1.AtVec(i)-gh*r.ft[i])
	}
	if err := r.lu.SolveVecTo(r.k2, false, r.rhs); err != nil {
		return dynamo.Attempt{}, fmt.Errorf("%w: %v", dynamo.ErrSingular, err)
	}

	xNew := make(dynamo.State, n)
	errEst := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		k1, k2 := r.k1.AtVec(i), r.k2.AtVec(i)
		xNew[i] = x[i] + h*(1.5*k1+0.5*k2)
		errEst[i] = h * 0.5 * (k1 + k2)
	}

	return dynamo.Attempt{X: xNew, ErrNorm: tol.ErrorNorm(errEst, x, xNew)}, nil
}

// jacobian forms J = df/dx and df/dt by forward differences around (t, x).
// Autonomous systems get df/dt = 0 exactly.
func (r *Rosenbrock) jacobian(dyn dynamo.System, t float64, x, fx dynamo.State) {
	n := len(x)
	xp := x.Clone()
	sqrtEps := math.Sqrt(2.220446049250313e-16)

	dt := sqrtEps * math.Max(1e-5, math.Abs(t))
	dt = (t + dt) - t
	ft := dyn.Derive(t+dt, x)
	for i := 0; i < n; i++ {
		r.ft[i] = (ft[i] - fx[i]) / dt
	}

	for j := 0; j < n; j++ {
		delta := sqrtEps * math.Max(1e-5, math.Abs(x[j]))
		xp[j] = x[j] + delta
		delta = xp[j] - x[j]
		fp := dyn.Derive(t, xp)
		for i := 0; i < n; i++ {
			r.jac.Set(i, j, (fp[i]-fx[i])/delta)
		}
		xp[j] = x[j]
	}

	r.jacNorm = mat.Norm(r.jac, math.Inf(1))
	r.jacValid = true
	r.jacEvals++
}

// Accept invalidates the Jacobian; the next step starts from a new point.
func (r *Rosenbrock) Accept(dyn dynamo.System, t, h float64, x dynamo.State) dynamo.State {
	r.jacValid = false
	return nil
}

// JacobianNorm returns ||J||inf of the most recent Jacobian, an upper bound
// on its spectral radius.
func (r *Rosenbrock) JacobianNorm() float64 { return r.jacNorm }

func (r *Rosenbrock) JacobianEvaluations() int { return r.jacEvals }
