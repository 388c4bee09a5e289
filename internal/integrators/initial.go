package integrators

import (
	"math"

	"github.com/san-kum/odedash/internal/dynamo"
)

// InitialStep estimates a first step size from the scale of the solution
// and of its first two derivatives (Hairer, Norsett & Wanner, II.4).
func InitialStep(dyn dynamo.System, t float64, x, dx dynamo.State, tol dynamo.Tolerance, order int, hMax float64) float64 {
	n := len(x)
	if n == 0 {
		return hMax
	}

	d0, d1 := 0.0, 0.0
	for i := 0; i < n; i++ {
		sc := tol.Abs + tol.Rel*math.Abs(x[i])
		d0 += (x[i] / sc) * (x[i] / sc)
		d1 += (dx[i] / sc) * (dx[i] / sc)
	}
	d0 = math.Sqrt(d0 / float64(n))
	d1 = math.Sqrt(d1 / float64(n))

	var h0 float64
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6
	} else {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, hMax)

	// explicit Euler step
	x1 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x1[i] = x[i] + h0*dx[i]
	}
	dx1 := dyn.Derive(t+h0, x1)

	d2 := 0.0
	for i := 0; i < n; i++ {
		sc := tol.Abs + tol.Rel*math.Abs(x[i])
		r := (dx1[i] - dx[i]) / sc
		d2 += r * r
	}
	d2 = math.Sqrt(d2/float64(n)) / h0

	var h1 float64
	if math.Max(d1, d2) <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/float64(order))
	}

	h := math.Min(100*h0, h1)
	if math.IsNaN(h) || h <= 0 {
		h = h0
	}
	return math.Min(h, hMax)
}
