// Package metrics summarizes trajectories: ranges, peaks, periods and
// boundedness of individual variables.
package metrics

import (
	"github.com/san-kum/odedash/internal/dynamo"
)

// Metric consumes trajectory samples in time order.
type Metric interface {
	Name() string
	Observe(t float64, x dynamo.State)
	Value() float64
	Reset()
}

// Result is one evaluated metric.
type Result struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Evaluate resets each metric, replays tr through it and collects the
// values in the order given.
func Evaluate(tr *dynamo.Trajectory, ms ...Metric) []Result {
	for _, m := range ms {
		m.Reset()
	}
	for i := 0; i < tr.Len(); i++ {
		x := tr.At(i)
		for _, m := range ms {
			m.Observe(tr.Times[i], x)
		}
	}
	out := make([]Result, len(ms))
	for i, m := range ms {
		out[i] = Result{Name: m.Name(), Value: m.Value()}
	}
	return out
}

// Default returns final value, range and period for every variable of m plus
// a bound check on the whole state. Concentrations may dip slightly below
// zero within the solver tolerance.
func Default(m *dynamo.Model, transient float64) []Metric {
	var ms []Metric
	for i, name := range m.VariableNames() {
		ms = append(ms,
			NewFinal(name, i),
			NewRange(name, i),
			NewPeriod(name, i, transient),
		)
	}
	return append(ms, NewBounded(m.VariableNames(), -1e-3, 1e6))
}
