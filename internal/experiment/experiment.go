// Package experiment resolves a configuration into a model, parameter set
// and simulator, and runs it.
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/odedash/internal/config"
	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/export"
	"github.com/san-kum/odedash/internal/metrics"
	"github.com/san-kum/odedash/internal/models"
	"github.com/san-kum/odedash/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	model     *dynamo.Model
	simulator *sim.Simulator
	params    dynamo.ParameterSet
	init      dynamo.State
}

// Result is a finished or failed run. Err is the integration error when the
// trajectory is partial.
type Result struct {
	Trajectory *dynamo.Trajectory
	Params     dynamo.ParameterSet
	Metrics    []metrics.Result
	Err        error
}

// New validates cfg against the registry. The config is copied.
func New(cfg *config.Config, reg *models.Registry, logger *slog.Logger) (*Experiment, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := reg.Get(cfg.Model)
	if err != nil {
		return nil, err
	}
	ps, x0, err := cfg.Resolve(m)
	if err != nil {
		return nil, err
	}

	opts := []sim.Option{sim.WithConfig(cfg.SimConfig())}
	if logger != nil {
		opts = append(opts, sim.WithLogger(logger))
	}
	s, err := sim.New(m, opts...)
	if err != nil {
		return nil, err
	}

	return &Experiment{cfg: cfg, model: m, simulator: s, params: ps, init: x0}, nil
}

func (e *Experiment) Config() *config.Config      { return e.cfg }
func (e *Experiment) Model() *dynamo.Model        { return e.model }
func (e *Experiment) Params() dynamo.ParameterSet { return e.params }
func (e *Experiment) InitialState() dynamo.State  { return e.init.Clone() }
func (e *Experiment) Simulator() *sim.Simulator   { return e.simulator }

// Run simulates to the configured horizon. An integration failure is
// reported in Result.Err with the partial trajectory; only request errors
// are returned as err.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	return e.RunParams(ctx, e.params)
}

// RunParams runs with ps in place of the configured parameters.
func (e *Experiment) RunParams(ctx context.Context, ps dynamo.ParameterSet) (*Result, error) {
	tr, err := e.simulator.RunParams(ctx, ps, e.init.Clone(), e.cfg.TStop)
	if tr == nil {
		return nil, err
	}
	return &Result{
		Trajectory: tr,
		Params:     ps,
		Metrics:    metrics.Evaluate(tr, metrics.Default(e.model, e.cfg.TStop/2)...),
		Err:        err,
	}, nil
}

// Sweep runs n evenly spaced values of the named parameter across its
// bounds.
func (e *Experiment) Sweep(ctx context.Context, name string, n, workers int) ([]sim.SweepResult, error) {
	p, ok := e.model.Parameter(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q for model %s", dynamo.ErrUnknownParameter, name, e.model.Name())
	}
	return e.simulator.Sweep(ctx, e.params, name, sim.Grid(p, n), e.cfg.TStop, workers)
}

// Export packages a result for the JSON and bundle writers.
func (e *Experiment) Export(res *Result) *export.Run {
	run := export.NewRun(e.model.Name(), e.cfg.Solver, e.cfg.TStop, res.Params, res.Trajectory, res.Err)
	run.Metrics = res.Metrics
	return run
}
