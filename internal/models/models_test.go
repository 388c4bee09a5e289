package models

import (
	"math"
	"testing"

	"github.com/san-kum/odedash/internal/dynamo"
)

func mustModel(t *testing.T, name string) *dynamo.Model {
	t.Helper()
	m, err := NewRegistry().Get(name)
	if err != nil {
		t.Fatalf("Get(%q): %v", name, err)
	}
	return m
}

func TestCellCycleDefinition(t *testing.T) {
	m := mustModel(t, "cellcycle")

	if m.Dim() != 7 {
		t.Errorf("expected 7 variables, got %d", m.Dim())
	}
	if m.NumParams() != 36 {
		t.Errorf("expected 36 parameters, got %d", m.NumParams())
	}
	// Ttot is unused by the equations but part of the parameter table
	if p, ok := m.Parameter("Ttot"); !ok || p.Init != 0.27 || p.Max != 3 {
		t.Errorf("Ttot missing or wrong: %+v, %v", p, ok)
	}

	want := []string{"B", "Bn", "C", "Cn", "T", "Tn", "N"}
	for i, name := range m.VariableNames() {
		if name != want[i] {
			t.Errorf("variable %d = %s, want %s", i, name, want[i])
		}
	}

	x0 := m.InitialState()
	for i, v := range x0 {
		expected := 0.0
		if want[i] == "T" || want[i] == "Tn" {
			expected = 0.27
		}
		if v != expected {
			t.Errorf("initial %s = %g, want %g", want[i], v, expected)
		}
	}
}

func TestCellCycleInitialDerivative(t *testing.T) {
	m := mustModel(t, "cellcycle")
	dx := CellCycleEquations(0, m.InitialState(), m.Defaults())

	expected := []float64{1.5, 0, 1.5, 0, -0.248508, 0.248508, 0}
	for i := range expected {
		if math.Abs(dx[i]-expected[i]) > 1e-12 {
			t.Errorf("d%s/dt = %.9f, want %.9f", m.VariableNames()[i], dx[i], expected[i])
		}
	}
}

func TestCellCycleConservation(t *testing.T) {
	m := mustModel(t, "cellcycle")
	p := m.Defaults()

	states := []dynamo.State{
		{1, 2, 0.5, 0.7, 0.2, 0.1, 0.4},
		{30, 25, 28, 20, 0.1, 0.2, 1.1},
		{-0.01, 0.3, -0.02, 0.1, 0.27, 0.27, -0.001},
	}
	for _, x := range states {
		dx := CellCycleEquations(0, x, p)
		// Cdc25 only shuttles between compartments
		if math.Abs(dx[4]+dx[5]) > 1e-12 {
			t.Errorf("Cdc25 not conserved at %v: %g", x, dx[4]+dx[5])
		}
		// total cyclin changes only through synthesis and degradation
		hA := p.Value("aA") + p.Value("bA")*math.Pow(math.Abs(x[2]), 21)/(math.Pow(math.Abs(x[2]), 21)+math.Pow(24, 21))
		net := p.Value("ks") - hA*x[0]
		if math.Abs(dx[0]+dx[1]-net) > 1e-9 {
			t.Errorf("cyclin balance at %v: got %g, want %g", x, dx[0]+dx[1], net)
		}
	}
}

func TestCellCycleNonPhysicalInputs(t *testing.T) {
	m := mustModel(t, "cellcycle")
	p := m.Defaults()

	inputs := []dynamo.State{
		{-1, -1, -1, -1, -1, -1, -1},
		{1e3, 1e3, 1e3, 1e3, 10, 10, 50},
		{0, 0, 0, 0, 0, 0, 0},
	}
	for _, x := range inputs {
		dx := CellCycleEquations(0, x, p)
		if len(dx) != len(x) {
			t.Fatalf("derivative length %d, want %d", len(dx), len(x))
		}
		if !dx.IsValid() {
			t.Errorf("non-finite derivative for %v: %v", x, dx)
		}
	}
}

func TestCellCycleIgnoresTime(t *testing.T) {
	m := mustModel(t, "cellcycle")
	x := dynamo.State{1, 1, 0.5, 0.5, 0.2, 0.2, 0.3}

	a := CellCycleEquations(0, x, m.Defaults())
	b := CellCycleEquations(123.4, x, m.Defaults())
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("derivative %d depends on t: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestRepressilator(t *testing.T) {
	m := mustModel(t, "repressilator")
	if m.Dim() != 6 {
		t.Fatalf("expected 6 variables, got %d", m.Dim())
	}

	dx := RepressilatorEquations(0, m.InitialState(), m.Defaults())
	// no protein yet, so every gene is fully on
	for i := 0; i < 3; i++ {
		want := -m.InitialState()[i] + 216 + 0.216
		if math.Abs(dx[i]-want) > 1e-9 {
			t.Errorf("dm%d = %g, want %g", i, dx[i], want)
		}
		wantP := 5 * m.InitialState()[i]
		if math.Abs(dx[3+i]-wantP) > 1e-12 {
			t.Errorf("dp%d = %g, want %g", i, dx[3+i], wantP)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.List()
	if len(names) != 2 || names[0] != "cellcycle" || names[1] != "repressilator" {
		t.Errorf("unexpected model list %v", names)
	}

	if _, err := r.Get("pendulum"); err == nil {
		t.Error("expected error for unknown model")
	}
}
