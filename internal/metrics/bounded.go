package metrics

import (
	"math"

	"github.com/san-kum/odedash/internal/dynamo"
)

// Bounded is the fraction of simulated time during which every variable
// stays finite and inside [lower, upper]. Adaptive steps cluster samples
// around fast transitions, so each sample is weighted by the interval up to
// the next one rather than counted.
type Bounded struct {
	names        []string
	lower, upper float64

	prevT      float64
	prevInside bool
	started    bool
	inside     float64
	total      float64

	violated  bool
	firstT    float64
	firstName string
}

// NewBounded tracks the variables names, in state order.
func NewBounded(names []string, lower, upper float64) *Bounded {
	return &Bounded{names: names, lower: lower, upper: upper}
}

func (b *Bounded) Name() string { return "bounded" }

func (b *Bounded) Observe(t float64, x dynamo.State) {
	in := true
	for i, v := range x {
		if math.IsNaN(v) || v < b.lower || v > b.upper {
			in = false
			if !b.violated {
				b.violated = true
				b.firstT = t
				if i < len(b.names) {
					b.firstName = b.names[i]
				}
			}
			break
		}
	}

	if b.started {
		dt := t - b.prevT
		b.total += dt
		if b.prevInside {
			b.inside += dt
		}
	}
	b.started = true
	b.prevT = t
	b.prevInside = in
}

// Value is 1 for a trajectory that never leaves the bounds. A single sample
// counts as fully inside or outside.
func (b *Bounded) Value() float64 {
	if !b.started {
		return 1
	}
	if b.total == 0 {
		if b.prevInside {
			return 1
		}
		return 0
	}
	return b.inside / b.total
}

// FirstViolation reports the earliest sample outside the bounds and the
// first offending variable.
func (b *Bounded) FirstViolation() (t float64, variable string, ok bool) {
	return b.firstT, b.firstName, b.violated
}

func (b *Bounded) Reset() {
	*b = Bounded{names: b.names, lower: b.lower, upper: b.upper}
}
