package dynamo

// Stats summarizes the work done by one integration.
type Stats struct {
	Accepted       int     `json:"accepted"`
	Rejected       int     `json:"rejected"`
	Evaluations    int     `json:"evaluations"`
	Jacobians      int     `json:"jacobians"`
	StiffSteps     int     `json:"stiff_steps"`
	NonStiffSteps  int     `json:"nonstiff_steps"`
	MethodSwitches int     `json:"method_switches"`
	LastStepSize   float64 `json:"last_step_size"`
}

// Trajectory is the sampled solution of one simulation request. Values[i]
// holds the series of variable Names[i], aligned with Times.
type Trajectory struct {
	Names    []string    `json:"names"`
	Times    []float64   `json:"times"`
	Values   [][]float64 `json:"values"`
	Complete bool        `json:"complete"`
	Stats    Stats       `json:"stats"`
}

// NewTrajectory returns an empty trajectory for the given variable order.
func NewTrajectory(names []string, capacity int) *Trajectory {
	tr := &Trajectory{
		Names:  append([]string(nil), names...),
		Times:  make([]float64, 0, capacity),
		Values: make([][]float64, len(names)),
	}
	for i := range tr.Values {
		tr.Values[i] = make([]float64, 0, capacity)
	}
	return tr
}

// Append records one sample. x must follow the Names ordering.
func (tr *Trajectory) Append(t float64, x State) {
	tr.Times = append(tr.Times, t)
	for i := range tr.Values {
		tr.Values[i] = append(tr.Values[i], x[i])
	}
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Series returns the samples of the named variable.
func (tr *Trajectory) Series(name string) ([]float64, bool) {
	for i, n := range tr.Names {
		if n == name {
			return tr.Values[i], true
		}
	}
	return nil, false
}

// At returns the state at sample i.
func (tr *Trajectory) At(i int) State {
	x := make(State, len(tr.Values))
	for j := range tr.Values {
		x[j] = tr.Values[j][i]
	}
	return x
}

// Final returns the last sampled state, or nil for an empty trajectory.
func (tr *Trajectory) Final() State {
	if tr.Len() == 0 {
		return nil
	}
	return tr.At(tr.Len() - 1)
}

// EndTime returns the last sampled time.
func (tr *Trajectory) EndTime() float64 {
	if tr.Len() == 0 {
		return 0
	}
	return tr.Times[tr.Len()-1]
}
