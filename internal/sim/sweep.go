package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/odedash/internal/dynamo"
)

// SweepResult is the outcome of one sweep point. Err holds the integration
// failure for this value, if any; Trajectory may then be partial.
type SweepResult struct {
	Value      float64
	Trajectory *dynamo.Trajectory
	Err        error
}

// Sweep runs one simulation per value of the named parameter, starting
// from base for every other parameter. Runs execute concurrently on at most
// workers goroutines (GOMAXPROCS when workers <= 0). Results keep the order
// of values.
func (s *Simulator) Sweep(ctx context.Context, base dynamo.ParameterSet, name string, values []float64, tStop float64, workers int) ([]SweepResult, error) {
	if _, ok := base.Lookup(name); !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownParameter, name)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]SweepResult, len(values))
	x0 := s.model.InitialState()

	var g errgroup.Group
	g.SetLimit(workers)

	for i, v := range values {
		g.Go(func() error {
			ps, err := base.With(name, v)
			if err != nil {
				return err
			}
			tr, err := s.RunParams(ctx, ps, x0, tStop)
			results[i] = SweepResult{Value: v, Trajectory: tr, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Grid returns n evenly spaced values across the parameter's bounds. A
// single point uses the parameter's initial value.
func Grid(p dynamo.Parameter, n int) []float64 {
	if n <= 1 {
		return []float64{p.Init}
	}
	return floats.Span(make([]float64, n), p.Min, p.Max)
}
