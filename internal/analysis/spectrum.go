package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/odedash/internal/dynamo"
)

// Resample interpolates the named series linearly onto n evenly spaced
// times in [from, tr.EndTime()].
func Resample(tr *dynamo.Trajectory, name string, from float64, n int) (times, values []float64, err error) {
	series, ok := tr.Series(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no variable %q", dynamo.ErrInvalidRequest, name)
	}
	if n < 2 || tr.Len() < 2 {
		return nil, nil, fmt.Errorf("%w: need at least two samples", dynamo.ErrInvalidRequest)
	}
	end := tr.EndTime()
	if from < tr.Times[0] {
		from = tr.Times[0]
	}
	if from >= end {
		return nil, nil, fmt.Errorf("%w: window start %g not before end %g", dynamo.ErrInvalidRequest, from, end)
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(tr.Times, series); err != nil {
		return nil, nil, err
	}

	times = floats.Span(make([]float64, n), from, end)
	values = make([]float64, n)
	for i, t := range times {
		values[i] = pl.Predict(t)
	}
	return times, values, nil
}

// DominantPeriod estimates the period of the named variable from the
// strongest non-zero frequency of its spectrum after transient. It returns
// 0 for a series without oscillation.
func DominantPeriod(tr *dynamo.Trajectory, name string, transient float64, n int) (float64, error) {
	times, values, err := Resample(tr, name, transient, n)
	if err != nil {
		return 0, err
	}

	mean := floats.Sum(values) / float64(len(values))
	floats.AddConst(-mean, values)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, values)

	best, bestPower := 0, 0.0
	for i := 1; i < len(coeffs); i++ {
		if p := cmplx.Abs(coeffs[i]); p > bestPower {
			best, bestPower = i, p
		}
	}
	if best == 0 || bestPower < 1e-9*float64(n) {
		return 0, nil
	}

	dt := times[1] - times[0]
	return dt / fft.Freq(best), nil
}
