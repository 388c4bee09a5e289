package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/sim"
)

// circle samples x=cos, y=sin with uneven spacing, like an adaptive run.
func circle(period, tEnd float64) *dynamo.Trajectory {
	tr := dynamo.NewTrajectory([]string{"x", "y"}, 1024)
	t, h := 0.0, 0.01
	for t <= tEnd {
		w := 2 * math.Pi * t / period
		tr.Append(t, dynamo.State{math.Cos(w), math.Sin(w)})
		t += h
		h = 0.01 + 0.005*math.Abs(math.Sin(t))
	}
	return tr
}

func TestPhasePortrait(t *testing.T) {
	tr := circle(4, 8)
	p, err := PhasePortrait(tr, "x", "y")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Points) != tr.Len() {
		t.Fatalf("expected %d points, got %d", tr.Len(), len(p.Points))
	}
	for _, pt := range p.Points {
		if r := math.Hypot(pt.X, pt.Y); math.Abs(r-1) > 1e-12 {
			t.Fatalf("point %v off the unit circle", pt)
		}
	}

	art := p.ASCII(40, 20)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 rows, got %d", len(lines))
	}
	if !strings.Contains(art, "•") || !strings.Contains(art, "│") {
		t.Error("expected points and a vertical axis")
	}
}

func TestPhasePortrait_UnknownVariable(t *testing.T) {
	_, err := PhasePortrait(circle(1, 1), "x", "z")
	if !errors.Is(err, dynamo.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestPoincareSection(t *testing.T) {
	tr := circle(2, 10)
	// y rises through 0 once per turn, where x = 1
	section, err := PoincareSection(tr, "y", 0, "x", "y")
	if err != nil {
		t.Fatal(err)
	}
	if len(section) != 4 {
		t.Fatalf("expected 4 crossings, got %d", len(section))
	}
	for _, p := range section {
		if math.Abs(p.X-1) > 1e-3 || math.Abs(p.Y) > 1e-3 {
			t.Errorf("crossing at %v, want (1, 0)", p)
		}
	}

	if got := SectionASCII(nil, 10, 5); got != "No crossings detected" {
		t.Errorf("unexpected empty rendering %q", got)
	}
}

func TestBifurcation(t *testing.T) {
	osc := circle(2, 10)
	flat := dynamo.NewTrajectory([]string{"x", "y"}, 2)
	flat.Append(0, dynamo.State{1, 0})
	flat.Append(1, dynamo.State{0.5, 0})

	results := []sim.SweepResult{
		{Value: 0.1, Trajectory: osc},
		{Value: 0.2, Trajectory: flat},
		{Value: 0.3, Err: dynamo.ErrNonFinite},
	}
	points, err := Bifurcation(results, "y", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if len(points[0].Values) != 1 || math.Abs(points[0].Values[0]-1) > 1e-3 {
		t.Errorf("oscillation peaks: %v", points[0].Values)
	}
	if len(points[1].Values) != 1 || points[1].Values[0] != 0 {
		t.Errorf("steady state should report final value: %v", points[1].Values)
	}
	if points[2].Values != nil || !errors.Is(points[2].Err, dynamo.ErrNonFinite) {
		t.Errorf("failed run should carry its error: %+v", points[2])
	}

	if BifurcationToASCII(points, 30, 10) == "" {
		t.Error("expected a rendering")
	}
	if _, err := Bifurcation(results, "nope", 0); err == nil {
		t.Error("expected error for unknown variable")
	}
}

func TestResample(t *testing.T) {
	tr := dynamo.NewTrajectory([]string{"x"}, 3)
	tr.Append(0, dynamo.State{0})
	tr.Append(1, dynamo.State{2})
	tr.Append(4, dynamo.State{8})

	times, values, err := Resample(tr, "x", 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	wantT := []float64{0, 1, 2, 3, 4}
	wantV := []float64{0, 2, 4, 6, 8}
	for i := range wantT {
		if math.Abs(times[i]-wantT[i]) > 1e-12 || math.Abs(values[i]-wantV[i]) > 1e-12 {
			t.Errorf("sample %d = (%g, %g), want (%g, %g)", i, times[i], values[i], wantT[i], wantV[i])
		}
	}

	if _, _, err := Resample(tr, "x", 10, 5); err == nil {
		t.Error("expected error for window past the end")
	}
}

func TestDominantPeriod(t *testing.T) {
	tr := circle(2.5, 40)
	period, err := DominantPeriod(tr, "x", 0, 1024)
	if err != nil {
		t.Fatal(err)
	}
	// frequency resolution is one bin over a 40 unit window
	if math.Abs(period-2.5) > 0.2 {
		t.Errorf("expected period near 2.5, got %g", period)
	}

	flat := dynamo.NewTrajectory([]string{"x"}, 2)
	flat.Append(0, dynamo.State{1})
	flat.Append(10, dynamo.State{1})
	period, err = DominantPeriod(flat, "x", 0, 64)
	if err != nil || period != 0 {
		t.Errorf("flat series: period %g, err %v", period, err)
	}
}
