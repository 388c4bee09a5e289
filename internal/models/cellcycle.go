package models

import (
	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/hill"
)

// Cdk1:CyclinB activation with cytoplasmic and nuclear compartments, the
// Cdc25/Wee1 feedback loops, APC-mediated degradation and a nuclear
// envelope variable N that gates import.
var cellCycleVariables = []dynamo.Variable{
	{Name: "B", Init: 0.0},
	{Name: "Bn", Init: 0.0},
	{Name: "C", Init: 0.0},
	{Name: "Cn", Init: 0.0},
	{Name: "T", Init: 0.27},
	{Name: "Tn", Init: 0.27},
	{Name: "N", Init: 0.0},
}

var cellCycleParameters = []dynamo.Parameter{
	{Name: "ks", Init: 1.5, Min: 0.0, Max: 4.0},
	{Name: "W", Init: 0.6, Min: 0.0, Max: 3.0},
	{Name: "Wn", Init: 0.9, Min: 0.0, Max: 3.0},
	{Name: "Ttot", Init: 0.27, Min: 0.0, Max: 3.0},
	// Degradation
	{Name: "aA", Init: 0.018, Min: 0.0, Max: 1.0},
	{Name: "bA", Init: 0.036, Min: 0.0, Max: 1.0},
	{Name: "KA", Init: 24.0, Min: 0.0, Max: 40.0},
	{Name: "nA", Init: 21.0, Min: 0.0, Max: 40.0},
	// Cdc25
	{Name: "aT", Init: 0.16, Min: 0.0, Max: 1.0},
	{Name: "bT", Init: 0.7, Min: 0.0, Max: 2.0},
	{Name: "KT", Init: 28.0, Min: 0.0, Max: 40.0},
	{Name: "nT", Init: 6.8, Min: 0.0, Max: 10.0},
	// Wee1
	{Name: "aW", Init: 0.08, Min: 0.0, Max: 1.0},
	{Name: "bW", Init: 0.43, Min: 0.0, Max: 2.0},
	{Name: "KW", Init: 35.0, Min: 0.0, Max: 40.0},
	{Name: "nW", Init: 3.1, Min: 0.0, Max: 6.0},
	// Nucleus
	{Name: "aN", Init: 0.0, Min: 0.0, Max: 1.0},
	{Name: "bN", Init: 1.0, Min: 0.0, Max: 2.0},
	{Name: "KN", Init: 1.0, Min: 0.0, Max: 2.0},
	{Name: "nN", Init: 5.0, Min: 0.0, Max: 10.0},
	{Name: "alpha", Init: 0.083, Min: 0.0, Max: 1.0},
	{Name: "beta", Init: 16.0, Min: 0.0, Max: 30.0},
	{Name: "gamma", Init: 10.44, Min: 0.0, Max: 30.0},
	// Import and export
	{Name: "aI", Init: 0.001, Min: 0.0, Max: 1.0},
	{Name: "KI", Init: 1.0, Min: 0.0, Max: 3.0},
	{Name: "nI", Init: 4.0, Min: 0.0, Max: 6.0},
	{Name: "aIC", Init: 0.1, Min: 0.0, Max: 1.0},
	{Name: "bIC", Init: 0.0333, Min: 0.0, Max: 1.0},
	{Name: "aIT", Init: 1.2, Min: 0.0, Max: 3.0},
	{Name: "bIT", Init: 0.03, Min: 0.0, Max: 1.0},
	{Name: "kiB", Init: 1.468, Min: 0.0, Max: 2.0},
	{Name: "keB", Init: 0.204, Min: 0.0, Max: 2.0},
	{Name: "kiC", Init: 1.428, Min: 0.0, Max: 2.0},
	{Name: "keC", Init: 0.168, Min: 0.0, Max: 2.0},
	{Name: "kiT", Init: 1.092, Min: 0.0, Max: 2.0},
	{Name: "keT", Init: 0.390, Min: 0.0, Max: 2.0},
}

// NewCellCycle returns the two-compartment Cdk1 cell-cycle model.
func NewCellCycle() (*dynamo.Model, error) {
	return dynamo.NewModel("cellcycle",
		"Cdk1:CyclinB oscillator with nuclear import/export",
		cellCycleVariables, cellCycleParameters, CellCycleEquations)
}

// CellCycleEquations is the right-hand side of the cell-cycle model. Time
// does not appear explicitly.
func CellCycleEquations(_ float64, y dynamo.State, p dynamo.ParameterSet) dynamo.State {
	B, Bn, C, Cn, T, Tn, N := y[0], y[1], y[2], y[3], y[4], y[5], y[6]

	var (
		ks, W, Wn               = p.Value("ks"), p.Value("W"), p.Value("Wn")
		aA, bA, KA, nA          = p.Value("aA"), p.Value("bA"), p.Value("KA"), p.Value("nA")
		aT, bT, KT, nT          = p.Value("aT"), p.Value("bT"), p.Value("KT"), p.Value("nT")
		aW, bW, KW, nW          = p.Value("aW"), p.Value("bW"), p.Value("KW"), p.Value("nW")
		aN, bN, KN, nN          = p.Value("aN"), p.Value("bN"), p.Value("KN"), p.Value("nN")
		alpha, beta, gamma      = p.Value("alpha"), p.Value("beta"), p.Value("gamma")
		aI, KI, nI              = p.Value("aI"), p.Value("KI"), p.Value("nI")
		aIC, bIC, aIT, bIT      = p.Value("aIC"), p.Value("bIC"), p.Value("aIT"), p.Value("bIT")
		kiB, keB, kiC, keC, kiT = p.Value("kiB"), p.Value("keB"), p.Value("kiC"), p.Value("keC"), p.Value("kiT")
		keT                     = p.Value("keT")
	)

	// interactions
	hT := aT + bT*hill.Increasing(C, KT, nT)
	hTn := aT + bT*hill.Increasing(Cn, KT, nT)
	hW := aW + bW*hill.Decreasing(C, KW, nW)
	hWn := aW + bW*hill.Decreasing(Cn, KW, nW)
	hA := aA + bA*hill.Increasing(C, KA, nA)
	hN := aN + bN*hill.Increasing(N, KN, nN)

	// import gated by the nuclear envelope, constant export
	gate := aI + (1.0-aI)*hill.Decreasing(N, KI, nI)
	importC := gate * (aIC + bIC*Cn)
	importT := gate * (aIT + bIT*C)
	const exportC, exportT = 1.0, 1.0

	// total Cdk1:CyclinB, cytoplasm and nucleus
	dB := ks - hA*B - kiB*importC*B + keB*exportC*Bn
	dBn := kiB*importC*B - keB*exportC*Bn

	// active Cdk1:CyclinB, cytoplasm and nucleus
	dC := ks - hA*C - kiC*importC*C + keC*exportC*Cn + T*hT*(B-C) - W*hW*C
	dCn := kiC*importC*C - keC*exportC*Cn + Tn*hTn*(Bn-Cn) - Wn*hWn*Cn

	// active Cdc25 shuttling
	dT := -kiT*importT*T + keT*exportT*Tn
	dTn := kiT*importT*T - keT*exportT*Tn

	dN := alpha*(C+Cn) + beta*hN - gamma*N

	return dynamo.State{dB, dBn, dC, dCn, dT, dTn, dN}
}
