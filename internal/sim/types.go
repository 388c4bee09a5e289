package sim

import (
	"time"

	"github.com/san-kum/odedash/internal/dynamo"
)

// Config controls the integration driver. Zero fields take the defaults.
type Config struct {
	Solver   string        `yaml:"solver" json:"solver"`
	RelTol   float64       `yaml:"rtol" json:"rtol"`
	AbsTol   float64       `yaml:"atol" json:"atol"`
	MaxSteps int           `yaml:"max_steps" json:"max_steps"`
	MaxStep  float64       `yaml:"max_step" json:"max_step"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig mirrors the tolerances of common LSODA front ends.
func DefaultConfig() Config {
	return Config{
		Solver:   "auto",
		RelTol:   1e-3,
		AbsTol:   1e-6,
		MaxSteps: 500000,
		Timeout:  30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Solver == "" {
		c.Solver = d.Solver
	}
	if c.RelTol <= 0 {
		c.RelTol = d.RelTol
	}
	if c.AbsTol <= 0 {
		c.AbsTol = d.AbsTol
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = d.MaxSteps
	}
	return c
}

// Request is one simulation request. Params is aligned with the model's
// parameter order; nil means the defaults. Initial, when set, replaces the
// model's initial state.
type Request struct {
	TStop   float64
	Params  []float64
	Initial dynamo.State
}

// countingSystem counts right-hand side evaluations for one run.
type countingSystem struct {
	dynamo.System
	evals int
}

func (c *countingSystem) Derive(t float64, x dynamo.State) dynamo.State {
	c.evals++
	return c.System.Derive(t, x)
}
