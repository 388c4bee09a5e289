package api

import (
	"github.com/san-kum/odedash/internal/dynamo"
)

type ModelSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Variables   []string `json:"variables"`
	Parameters  int      `json:"parameters"`
}

type ModelInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Variables   []dynamo.Variable  `json:"variables"`
	Parameters  []dynamo.Parameter `json:"parameters"`
	Presets     []string           `json:"presets,omitempty"`
}

// SimulateRequest overrides parameters either positionally (Params, in the
// model's order) or by name (Set), not both.
type SimulateRequest struct {
	TStop  *float64           `json:"t_stop,omitempty"`
	Params []float64          `json:"params,omitempty"`
	Set    map[string]float64 `json:"set,omitempty"`
	Init   map[string]float64 `json:"init,omitempty"`
	Solver string             `json:"solver,omitempty"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
