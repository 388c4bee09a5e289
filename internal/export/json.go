package export

import (
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/metrics"
)

// Run is the JSON document for one simulation.
type Run struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Solver     string             `json:"solver"`
	TStop      float64            `json:"t_stop"`
	CreatedAt  time.Time          `json:"created_at"`
	Parameters map[string]float64 `json:"parameters"`
	Metrics    []metrics.Result   `json:"metrics,omitempty"`
	Error      string             `json:"error,omitempty"`
	Trajectory *dynamo.Trajectory `json:"trajectory"`
}

// NewRun stamps a run with a fresh id. runErr is the simulation error, if
// the trajectory is partial.
func NewRun(model, solver string, tStop float64, ps dynamo.ParameterSet, tr *dynamo.Trajectory, runErr error) *Run {
	r := &Run{
		ID:         uuid.NewString(),
		Model:      model,
		Solver:     solver,
		TStop:      tStop,
		CreatedAt:  time.Now().UTC(),
		Parameters: ps.Map(),
		Trajectory: tr,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	return r
}

func WriteJSON(w io.Writer, run *Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func ReadJSON(r io.Reader) (*Run, error) {
	var run Run
	if err := json.NewDecoder(r).Decode(&run); err != nil {
		return nil, err
	}
	return &run, nil
}
