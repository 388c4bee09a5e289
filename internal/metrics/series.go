package metrics

import (
	"math"

	"github.com/san-kum/odedash/internal/dynamo"
)

type Final struct {
	name  string
	index int
	last  float64
	seen  bool
}

func NewFinal(variable string, index int) *Final {
	return &Final{name: variable + ".final", index: index}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(_ float64, x dynamo.State) {
	f.last = x[f.index]
	f.seen = true
}

func (f *Final) Value() float64 {
	if !f.seen {
		return math.NaN()
	}
	return f.last
}

func (f *Final) Reset() {
	f.last = 0
	f.seen = false
}

// Range is max minus min of one variable.
type Range struct {
	name     string
	index    int
	min, max float64
	samples  int
}

func NewRange(variable string, index int) *Range {
	return &Range{name: variable + ".range", index: index}
}

func (r *Range) Name() string { return r.name }

func (r *Range) Observe(_ float64, x dynamo.State) {
	v := x[r.index]
	if r.samples == 0 {
		r.min, r.max = v, v
	} else {
		r.min = math.Min(r.min, v)
		r.max = math.Max(r.max, v)
	}
	r.samples++
}

func (r *Range) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.max - r.min
}

func (r *Range) Reset() {
	r.min, r.max = 0, 0
	r.samples = 0
}

type peak struct{ t, v float64 }

// Period is the mean spacing between the peaks of one variable that rise
// above the midpoint of its range. Samples before transient are ignored.
// The value is 0 when fewer than two such peaks were seen.
type Period struct {
	name      string
	index     int
	transient float64

	peaks    []peak
	prev     [2]float64
	prevT    float64
	n        int
	min, max float64
}

func NewPeriod(variable string, index int, transient float64) *Period {
	return &Period{name: variable + ".period", index: index, transient: transient}
}

func (p *Period) Name() string { return p.name }

func (p *Period) Observe(t float64, x dynamo.State) {
	if t < p.transient {
		return
	}
	v := x[p.index]
	if p.n == 0 {
		p.min, p.max = v, v
	} else {
		p.min = math.Min(p.min, v)
		p.max = math.Max(p.max, v)
	}
	// prev[1] is a strict local maximum between prev[0] and v
	if p.n >= 2 && p.prev[1] > p.prev[0] && p.prev[1] > v {
		p.peaks = append(p.peaks, peak{t: p.prevT, v: p.prev[1]})
	}
	p.prev[0], p.prev[1] = p.prev[1], v
	p.prevT = t
	p.n++
}

func (p *Period) Value() float64 {
	mid := (p.min + p.max) / 2
	var times []float64
	for _, pk := range p.peaks {
		if pk.v > mid {
			times = append(times, pk.t)
		}
	}
	if len(times) < 2 {
		return 0
	}
	return (times[len(times)-1] - times[0]) / float64(len(times)-1)
}

// Peaks returns how many peaks above the midpoint were seen.
func (p *Period) Peaks() int {
	mid := (p.min + p.max) / 2
	n := 0
	for _, pk := range p.peaks {
		if pk.v > mid {
			n++
		}
	}
	return n
}

func (p *Period) Reset() {
	p.peaks = p.peaks[:0]
	p.prev = [2]float64{}
	p.prevT = 0
	p.n = 0
	p.min, p.max = 0, 0
}
