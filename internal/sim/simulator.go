package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/integrators"
	"github.com/san-kum/odedash/internal/logging"
)

const (
	safety   = 0.9
	minScale = 0.2
	maxScale = 5.0
	// retryScale shrinks the step after a singular matrix or a non-finite
	// candidate state.
	retryScale = 0.25
	// maxNonFinite consecutive non-finite candidates end the run.
	maxNonFinite = 12
)

// Simulator integrates one model. It keeps no per-run state, so Run may be
// called from several goroutines at once.
type Simulator struct {
	model      *dynamo.Model
	cfg        Config
	newStepper func() dynamo.Stepper
	logger     *slog.Logger
}

type Option func(*Simulator)

// WithConfig sets tolerances, limits and the solver name.
func WithConfig(cfg Config) Option {
	return func(s *Simulator) { s.cfg = cfg }
}

// WithStepper overrides the solver named in the config.
func WithStepper(factory func() dynamo.Stepper) Option {
	return func(s *Simulator) { s.newStepper = factory }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func New(m *dynamo.Model, opts ...Option) (*Simulator, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil model", dynamo.ErrInvalidModel)
	}
	s := &Simulator{
		model: m,
		cfg:   DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg = s.cfg.withDefaults()

	if s.newStepper == nil {
		factory, err := integrators.Factory(s.cfg.Solver)
		if err != nil {
			return nil, err
		}
		s.newStepper = factory
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s, nil
}

func (s *Simulator) Model() *dynamo.Model { return s.model }
func (s *Simulator) Config() Config       { return s.cfg }

// Run validates the request, builds its parameter set and integrates from
// t=0 to req.TStop. On integration failure the partial trajectory is
// returned along with a *dynamo.SimulationError.
func (s *Simulator) Run(ctx context.Context, req Request) (*dynamo.Trajectory, error) {
	ps := s.model.Defaults()
	if req.Params != nil {
		var err error
		ps, err = s.model.Params(req.Params)
		if err != nil {
			return nil, err
		}
	}

	x0 := s.model.InitialState()
	if req.Initial != nil {
		if len(req.Initial) != s.model.Dim() {
			return nil, fmt.Errorf("%w: initial state has %d values, model %s has %d variables",
				dynamo.ErrDimensionMismatch, len(req.Initial), s.model.Name(), s.model.Dim())
		}
		x0 = req.Initial.Clone()
	}

	return s.RunParams(ctx, ps, x0, req.TStop)
}

// RunParams integrates with an already constructed parameter set.
func (s *Simulator) RunParams(ctx context.Context, ps dynamo.ParameterSet, x0 dynamo.State, tStop float64) (*dynamo.Trajectory, error) {
	if !(tStop > 0) || math.IsInf(tStop, 0) {
		return nil, fmt.Errorf("%w: t_stop must be positive and finite, got %g", dynamo.ErrInvalidRequest, tStop)
	}
	if ps.Len() != s.model.NumParams() {
		return nil, fmt.Errorf("%w: parameter set has %d values, model %s has %d parameters",
			dynamo.ErrDimensionMismatch, ps.Len(), s.model.Name(), s.model.NumParams())
	}
	if len(x0) != s.model.Dim() {
		return nil, fmt.Errorf("%w: initial state has %d values, model %s has %d variables",
			dynamo.ErrDimensionMismatch, len(x0), s.model.Name(), s.model.Dim())
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	r := &run{
		sim:     s,
		stepper: s.newStepper(),
		sys:     &countingSystem{System: s.model.Bind(ps)},
		tol:     dynamo.Tolerance{Rel: s.cfg.RelTol, Abs: s.cfg.AbsTol},
		tStop:   tStop,
		traj:    dynamo.NewTrajectory(s.model.VariableNames(), 256),
	}
	if sw, ok := r.stepper.(interface {
		OnSwitch(func(t float64, stiff bool))
	}); ok {
		sw.OnSwitch(func(t float64, stiff bool) {
			s.logger.Debug("solver switched", "model", s.model.Name(), "t", t, "stiff", stiff)
		})
	}

	start := time.Now()
	err := r.integrate(ctx, x0.Clone())
	r.finishStats()

	if err != nil {
		s.logger.Warn("simulation failed",
			"model", s.model.Name(), "t_stop", tStop, "reached", r.traj.EndTime(), "err", err)
		return r.traj, err
	}

	r.traj.Complete = true
	s.logger.Debug("simulation complete",
		"model", s.model.Name(), "t_stop", tStop, "samples", r.traj.Len(),
		"accepted", r.traj.Stats.Accepted, "rejected", r.traj.Stats.Rejected,
		"elapsed", time.Since(start))
	return r.traj, nil
}

type run struct {
	sim     *Simulator
	stepper dynamo.Stepper
	sys     *countingSystem
	tol     dynamo.Tolerance
	tStop   float64
	traj    *dynamo.Trajectory
	step    int
}

func (r *run) fail(t float64, x dynamo.State, err error) error {
	return &dynamo.SimulationError{Step: r.step, Time: t, State: x.Clone(), Wrapped: err}
}

func (r *run) integrate(ctx context.Context, x dynamo.State) error {
	cfg := r.sim.cfg
	stats := &r.traj.Stats
	t := 0.0

	r.traj.Append(t, x)

	dx := r.sys.Derive(t, x)
	if !dx.IsValid() {
		return r.fail(t, x, dynamo.ErrNonFinite)
	}

	hMax := r.tStop
	if cfg.MaxStep > 0 {
		hMax = math.Min(cfg.MaxStep, r.tStop)
	}
	h := integrators.InitialStep(r.sys, t, x, dx, r.tol, r.stepper.Order(), hMax)
	nonFinite := 0

	for t < r.tStop {
		if r.tStop-t <= minStep(t) {
			// within rounding of the horizon; the last sample becomes t_stop
			if n := r.traj.Len(); n > 1 {
				r.traj.Times[n-1] = r.tStop
			} else {
				r.traj.Append(r.tStop, x)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return r.fail(t, x, fmt.Errorf("%w: %w", dynamo.ErrCanceled, ctx.Err()))
		default:
		}

		if r.step >= cfg.MaxSteps {
			return r.fail(t, x, dynamo.ErrMaxSteps)
		}
		r.step++

		last := false
		if t+1.01*h >= r.tStop {
			h = r.tStop - t
			last = true
		}
		if h <= minStep(t) {
			return r.fail(t, x, dynamo.ErrStepTooSmall)
		}

		stiff := isStiff(r.stepper)
		order := r.stepper.Order()

		att, err := r.stepper.Step(r.sys, t, x, dx, h, r.tol)
		if err != nil {
			if errors.Is(err, dynamo.ErrSingular) {
				stats.Rejected++
				h *= retryScale
				continue
			}
			return r.fail(t, x, err)
		}

		if !att.X.IsValid() || math.IsNaN(att.ErrNorm) {
			stats.Rejected++
			nonFinite++
			if nonFinite >= maxNonFinite {
				return r.fail(t, x, dynamo.ErrNonFinite)
			}
			h *= retryScale
			continue
		}
		nonFinite = 0

		if att.ErrNorm > 1 {
			stats.Rejected++
			h *= math.Max(minScale, safety*math.Pow(att.ErrNorm, -1/float64(order)))
			continue
		}

		tNew := t + h
		if last {
			tNew = r.tStop
		}

		fx := r.stepper.Accept(r.sys, tNew, h, att.X)
		if fx == nil {
			fx = r.sys.Derive(tNew, att.X)
		}

		t, x, dx = tNew, att.X, fx
		r.traj.Append(t, x)
		stats.Accepted++
		stats.LastStepSize = h
		if stiff {
			stats.StiffSteps++
		} else {
			stats.NonStiffSteps++
		}

		if !dx.IsValid() {
			return r.fail(t, x, dynamo.ErrNonFinite)
		}

		scale := maxScale
		if att.ErrNorm > 0 {
			scale = math.Min(maxScale, safety*math.Pow(att.ErrNorm, -1/float64(order)))
		}
		h = math.Min(h*scale, hMax)
	}

	return nil
}

func (r *run) finishStats() {
	stats := &r.traj.Stats
	stats.Evaluations = r.sys.evals
	if jc, ok := r.stepper.(dynamo.JacobianCounter); ok {
		stats.Jacobians = jc.JacobianEvaluations()
	}
	if sw, ok := r.stepper.(dynamo.Switcher); ok {
		stats.MethodSwitches = sw.Switches()
	}
}

func isStiff(s dynamo.Stepper) bool {
	if sw, ok := s.(dynamo.Switcher); ok {
		return sw.Stiff()
	}
	_, implicit := s.(*integrators.Rosenbrock)
	return implicit
}

// minStep is the smallest step that still moves t by a representable amount.
func minStep(t float64) float64 {
	return 10 * (math.Nextafter(t, math.Inf(1)) - t)
}
