package sim_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/models"
	"github.com/san-kum/odedash/internal/sim"
)

func cellCycle() *dynamo.Model {
	m, err := models.NewCellCycle()
	Expect(err).NotTo(HaveOccurred())
	return m
}

func newSim(m *dynamo.Model, cfg sim.Config) *sim.Simulator {
	s, err := sim.New(m, sim.WithConfig(cfg))
	Expect(err).NotTo(HaveOccurred())
	return s
}

func expectWellFormed(tr *dynamo.Trajectory, dim int) {
	Expect(tr.Values).To(HaveLen(dim))
	for _, series := range tr.Values {
		Expect(series).To(HaveLen(len(tr.Times)))
	}
	Expect(tr.Times[0]).To(BeNumerically(">=", 0))
	for i := 1; i < len(tr.Times); i++ {
		Expect(tr.Times[i]).To(BeNumerically(">", tr.Times[i-1]))
	}
}

// stiffRelaxation is y' = -1000 (y - cos t), a smooth solution guarded by a
// fast decaying mode.
func stiffRelaxation() *dynamo.Model {
	m, err := dynamo.NewModel("relax", "",
		[]dynamo.Variable{{Name: "y", Init: 1}},
		[]dynamo.Parameter{{Name: "k", Init: 1000, Min: 0, Max: 1e4}},
		func(t float64, x dynamo.State, p dynamo.ParameterSet) dynamo.State {
			return dynamo.State{-p.Value("k") * (x[0] - math.Cos(t))}
		})
	Expect(err).NotTo(HaveOccurred())
	return m
}

// closingStepper leaves y unchanged and steers the controller so that a
// regular step ends a few ulps short of tStop.
type closingStepper struct{ tStop float64 }

func (c *closingStepper) Name() string { return "closing" }
func (c *closingStepper) Order() int   { return 1 }

func (c *closingStepper) Step(_ dynamo.System, t float64, x, _ dynamo.State, h float64, _ dynamo.Tolerance) (dynamo.Attempt, error) {
	ulp := 1 - math.Nextafter(1, 0)
	r := c.tStop - (t + h)
	target := 0.05 * r
	if r < 200*ulp {
		target = r - 8*ulp
	}
	if target <= 0 {
		target = h
	}
	// the controller grows h by 0.9/err
	errNorm := math.Min(math.Max(0.9*h/target, 1e-3), 0.95)
	return dynamo.Attempt{X: x.Clone(), ErrNorm: errNorm}, nil
}

func (c *closingStepper) Accept(dynamo.System, float64, float64, dynamo.State) dynamo.State {
	return nil
}

var _ = Describe("Simulator", func() {
	ctx := context.Background()

	Describe("cell-cycle model with default parameters", func() {
		var s *sim.Simulator

		BeforeEach(func() {
			s = newSim(cellCycle(), sim.DefaultConfig())
		})

		It("integrates to t_stop with aligned, increasing samples", func() {
			tr, err := s.Run(ctx, sim.Request{TStop: 1000})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Complete).To(BeTrue())
			Expect(tr.Times[0]).To(Equal(0.0))
			Expect(tr.EndTime()).To(Equal(1000.0))
			Expect(tr.Names).To(Equal([]string{"B", "Bn", "C", "Cn", "T", "Tn", "N"}))
			expectWellFormed(tr, 7)
			Expect(tr.Final().IsValid()).To(BeTrue())
			Expect(tr.Stats.Accepted).To(Equal(tr.Len() - 1))
			Expect(tr.Stats.Evaluations).To(BeNumerically(">", tr.Stats.Accepted))
		})

		It("is deterministic for identical requests", func() {
			a, err := s.Run(ctx, sim.Request{TStop: 1000})
			Expect(err).NotTo(HaveOccurred())
			b, err := s.Run(ctx, sim.Request{TStop: 1000})
			Expect(err).NotTo(HaveOccurred())

			Expect(b.Times).To(Equal(a.Times))
			Expect(b.Values).To(Equal(a.Values))
		})

		It("handles the smallest horizon", func() {
			tr, err := s.Run(ctx, sim.Request{TStop: 1e-4})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(BeNumerically(">=", 2))
			Expect(tr.EndTime()).To(Equal(1e-4))
			expectWellFormed(tr, 7)
		})

		It("handles the largest horizon", func() {
			tr, err := s.Run(ctx, sim.Request{TStop: 1e4})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.EndTime()).To(Equal(1e4))
			expectWellFormed(tr, 7)
		})

		It("accepts positional parameters and initial states", func() {
			m := s.Model()
			values := m.Defaults().Values()
			values[0] = 2.0 // ks

			x0 := m.InitialState()
			x0[6] = 0.5

			tr, err := s.Run(ctx, sim.Request{TStop: 50, Params: values, Initial: x0})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Values[6][0]).To(Equal(0.5))

			base, err := s.Run(ctx, sim.Request{TStop: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Final()).NotTo(Equal(base.Final()))
		})

		It("is safe to run concurrently", func() {
			want, err := s.Run(ctx, sim.Request{TStop: 200})
			Expect(err).NotTo(HaveOccurred())

			var wg sync.WaitGroup
			results := make([]*dynamo.Trajectory, 4)
			for i := range results {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					tr, err := s.Run(ctx, sim.Request{TStop: 200})
					Expect(err).NotTo(HaveOccurred())
					results[i] = tr
				}()
			}
			wg.Wait()

			for _, tr := range results {
				Expect(tr.Values).To(Equal(want.Values))
			}
		})
	})

	Describe("solvers", func() {
		tight := sim.Config{RelTol: 1e-6, AbsTol: 1e-9}

		It("agree on a short cell-cycle horizon", func() {
			var finals []dynamo.State
			for _, name := range []string{"rk45", "rosenbrock", "auto"} {
				cfg := tight
				cfg.Solver = name
				tr, err := newSim(cellCycle(), cfg).Run(ctx, sim.Request{TStop: 20})
				Expect(err).NotTo(HaveOccurred(), name)
				finals = append(finals, tr.Final())
			}
			for _, f := range finals[1:] {
				for i := range f {
					Expect(f[i]).To(BeNumerically("~", finals[0][i], 1e-3*(1+math.Abs(finals[0][i]))))
				}
			}
		})

		It("match an analytic solution", func() {
			m, err := dynamo.NewModel("decay", "",
				[]dynamo.Variable{{Name: "y", Init: 1}},
				[]dynamo.Parameter{{Name: "k", Init: 1, Min: 0, Max: 2}},
				func(t float64, x dynamo.State, p dynamo.ParameterSet) dynamo.State {
					return dynamo.State{-p.Value("k") * x[0]}
				})
			Expect(err).NotTo(HaveOccurred())

			tr, err := newSim(m, sim.Config{RelTol: 1e-9, AbsTol: 1e-12}).Run(ctx, sim.Request{TStop: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Final()[0]).To(BeNumerically("~", math.Exp(-5), 1e-7))
		})

		It("switch to the implicit method on stiff problems", func() {
			tr, err := newSim(stiffRelaxation(), sim.Config{Solver: "auto"}).Run(ctx, sim.Request{TStop: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Stats.MethodSwitches).To(BeNumerically(">=", 1))
			Expect(tr.Stats.StiffSteps).To(BeNumerically(">", 0))
			Expect(tr.Stats.Jacobians).To(BeNumerically(">", 0))
			Expect(tr.Final()[0]).To(BeNumerically("~", math.Cos(10), 1e-2))
		})

		It("take large steps with the implicit method", func() {
			tr, err := newSim(stiffRelaxation(), sim.Config{Solver: "rosenbrock"}).Run(ctx, sim.Request{TStop: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Stats.Accepted).To(BeNumerically("<", 1000))
			Expect(tr.Stats.StiffSteps).To(Equal(tr.Stats.Accepted))
		})

		It("step an explicitly time-dependent model like its autonomous form", func() {
			// same problem with time carried as a state variable s' = 1
			lifted, err := dynamo.NewModel("relax-lifted", "",
				[]dynamo.Variable{{Name: "y", Init: 1}, {Name: "s", Init: 0}},
				[]dynamo.Parameter{{Name: "k", Init: 1000, Min: 0, Max: 1e4}},
				func(_ float64, x dynamo.State, p dynamo.ParameterSet) dynamo.State {
					return dynamo.State{-p.Value("k") * (x[0] - math.Cos(x[1])), 1}
				})
			Expect(err).NotTo(HaveOccurred())

			cfg := sim.Config{Solver: "rosenbrock"}
			direct, err := newSim(stiffRelaxation(), cfg).Run(ctx, sim.Request{TStop: 10})
			Expect(err).NotTo(HaveOccurred())
			auto, err := newSim(lifted, cfg).Run(ctx, sim.Request{TStop: 10})
			Expect(err).NotTo(HaveOccurred())

			Expect(direct.Stats.Accepted).To(BeNumerically("<=", 2*auto.Stats.Accepted+10))
			Expect(direct.Final()[0]).To(BeNumerically("~", auto.Final()[0], 1e-3))
		})
	})

	Describe("horizon", func() {
		It("finishes when the last regular step lands within rounding of t_stop", func() {
			m, err := dynamo.NewModel("still", "",
				[]dynamo.Variable{{Name: "y", Init: 1}},
				nil,
				func(_ float64, x dynamo.State, _ dynamo.ParameterSet) dynamo.State {
					return dynamo.State{0}
				})
			Expect(err).NotTo(HaveOccurred())

			s, err := sim.New(m, sim.WithStepper(func() dynamo.Stepper { return &closingStepper{tStop: 1} }))
			Expect(err).NotTo(HaveOccurred())

			tr, err := s.Run(ctx, sim.Request{TStop: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Complete).To(BeTrue())
			Expect(tr.EndTime()).To(Equal(1.0))
			expectWellFormed(tr, 1)
			Expect(tr.Final()[0]).To(Equal(1.0))
		})
	})

	Describe("failures", func() {
		It("reports non-finite derivatives with the reached prefix", func() {
			m := cellCycle()
			// K=0 with C=0 gives 0/0 in the Cdc25 Hill term
			ps, err := m.ParamsFromMap(map[string]float64{"KT": 0})
			Expect(err).NotTo(HaveOccurred())

			s := newSim(m, sim.DefaultConfig())
			tr, err := s.Run(ctx, sim.Request{TStop: 1000, Params: ps.Values()})
			Expect(err).To(MatchError(dynamo.ErrNonFinite))

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Time).To(Equal(0.0))
			Expect(tr).NotTo(BeNil())
			Expect(tr.Complete).To(BeFalse())
			Expect(tr.Len()).To(Equal(1))
		})

		It("stops at the step budget", func() {
			tr, err := newSim(cellCycle(), sim.Config{MaxSteps: 10}).Run(ctx, sim.Request{TStop: 1000})
			Expect(err).To(MatchError(dynamo.ErrMaxSteps))
			Expect(tr.Complete).To(BeFalse())
			Expect(tr.EndTime()).To(BeNumerically("<", 1000))
			Expect(tr.Len()).To(BeNumerically("<=", 11))
			expectWellFormed(tr, 7)
		})

		It("honours context cancellation", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			tr, err := newSim(cellCycle(), sim.DefaultConfig()).Run(cctx, sim.Request{TStop: 1000})
			Expect(err).To(MatchError(dynamo.ErrCanceled))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(tr.Complete).To(BeFalse())
		})

		It("honours the wall-clock timeout", func() {
			_, err := newSim(cellCycle(), sim.Config{Timeout: time.Nanosecond}).Run(ctx, sim.Request{TStop: 1e4})
			Expect(err).To(MatchError(dynamo.ErrCanceled))
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})

		DescribeTable("rejects invalid requests without a trajectory",
			func(req sim.Request, target error) {
				tr, err := newSim(cellCycle(), sim.DefaultConfig()).Run(ctx, req)
				Expect(err).To(MatchError(target))
				Expect(tr).To(BeNil())
			},
			Entry("zero t_stop", sim.Request{TStop: 0}, dynamo.ErrInvalidRequest),
			Entry("negative t_stop", sim.Request{TStop: -1}, dynamo.ErrInvalidRequest),
			Entry("NaN t_stop", sim.Request{TStop: math.NaN()}, dynamo.ErrInvalidRequest),
			Entry("infinite t_stop", sim.Request{TStop: math.Inf(1)}, dynamo.ErrInvalidRequest),
			Entry("short parameter vector", sim.Request{TStop: 1, Params: []float64{1}}, dynamo.ErrDimensionMismatch),
			Entry("short initial state", sim.Request{TStop: 1, Initial: dynamo.State{1}}, dynamo.ErrDimensionMismatch),
		)

		It("rejects unknown solvers at construction", func() {
			_, err := sim.New(cellCycle(), sim.WithConfig(sim.Config{Solver: "lsoda"}))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Sweep", func() {
		It("runs every value and keeps the input order", func() {
			m := cellCycle()
			s := newSim(m, sim.DefaultConfig())
			values := []float64{0.5, 1.0, 1.5, 2.0}

			results, err := s.Sweep(ctx, m.Defaults(), "ks", values, 100, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(len(values)))
			for i, r := range results {
				Expect(r.Value).To(Equal(values[i]))
				Expect(r.Err).NotTo(HaveOccurred())
				Expect(r.Trajectory.Complete).To(BeTrue())
			}

			single, err := s.RunParams(ctx, mustWith(m.Defaults(), "ks", 1.5), m.InitialState(), 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[2].Trajectory.Values).To(Equal(single.Values))
		})

		It("rejects unknown parameters", func() {
			m := cellCycle()
			_, err := newSim(m, sim.DefaultConfig()).Sweep(ctx, m.Defaults(), "nope", []float64{1}, 10, 1)
			Expect(err).To(MatchError(dynamo.ErrUnknownParameter))
		})

		It("builds evenly spaced grids", func() {
			p := dynamo.Parameter{Name: "ks", Init: 1.5, Min: 0, Max: 4}
			Expect(sim.Grid(p, 5)).To(Equal([]float64{0, 1, 2, 3, 4}))
			Expect(sim.Grid(p, 1)).To(Equal([]float64{1.5}))
		})
	})
})

func mustWith(ps dynamo.ParameterSet, name string, v float64) dynamo.ParameterSet {
	out, err := ps.With(name, v)
	Expect(err).NotTo(HaveOccurred())
	return out
}
