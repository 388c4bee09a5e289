// Package hill implements the saturating Hill response functions used by
// gene-regulation and signalling models.
//
// Both functions take |x| so they stay defined when a solver's trial
// states hold slightly negative concentrations. Nothing guards the 0/0
// case (x = 0 with K = 0); it yields NaN like any other IEEE division.
package hill

import "math"

// Increasing returns |x|^n / (|x|^n + K^n).
func Increasing(x, K, n float64) float64 {
	a := math.Pow(math.Abs(x), n)
	b := math.Pow(K, n)
	return a / (a + b)
}

// Decreasing returns K^n / (|x|^n + K^n).
func Decreasing(x, K, n float64) float64 {
	a := math.Pow(math.Abs(x), n)
	b := math.Pow(K, n)
	return b / (a + b)
}

// IncreasingEach applies Increasing elementwise.
func IncreasingEach(xs []float64, K, n float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = Increasing(x, K, n)
	}
	return out
}

// DecreasingEach applies Decreasing elementwise.
func DecreasingEach(xs []float64, K, n float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = Decreasing(x, K, n)
	}
	return out
}
