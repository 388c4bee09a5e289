package models

import (
	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/hill"
)

// Elowitz-Leibler repressilator: three genes in a ring, each protein
// repressing transcription of the next gene.
var repressilatorVariables = []dynamo.Variable{
	{Name: "mLacI", Init: 0.2},
	{Name: "mTetR", Init: 0.1},
	{Name: "mCI", Init: 0.3},
	{Name: "pLacI", Init: 0.0},
	{Name: "pTetR", Init: 0.0},
	{Name: "pCI", Init: 0.0},
}

var repressilatorParameters = []dynamo.Parameter{
	{Name: "alpha", Init: 216.0, Min: 0.0, Max: 500.0},
	{Name: "alpha0", Init: 0.216, Min: 0.0, Max: 5.0},
	{Name: "beta", Init: 5.0, Min: 0.0, Max: 20.0},
	{Name: "K", Init: 1.0, Min: 0.01, Max: 5.0},
	{Name: "n", Init: 2.0, Min: 0.0, Max: 5.0},
}

func NewRepressilator() (*dynamo.Model, error) {
	return dynamo.NewModel("repressilator",
		"three-gene transcriptional repressor ring",
		repressilatorVariables, repressilatorParameters, RepressilatorEquations)
}

func RepressilatorEquations(_ float64, y dynamo.State, p dynamo.ParameterSet) dynamo.State {
	alpha, alpha0, beta := p.Value("alpha"), p.Value("alpha0"), p.Value("beta")
	K, n := p.Value("K"), p.Value("n")

	dy := make(dynamo.State, 6)
	for i := 0; i < 3; i++ {
		m, prot := y[i], y[3+i]
		repressor := y[3+(i+2)%3]
		dy[i] = -m + alpha*hill.Decreasing(repressor, K, n) + alpha0
		dy[3+i] = -beta * (prot - m)
	}
	return dy
}
