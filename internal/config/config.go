package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/integrators"
	"github.com/san-kum/odedash/internal/sim"
)

const (
	DefaultTStop      = 1000.0
	MinTStop          = 1e-4
	MaxTStop          = 1e4
	DefaultPlotHeight = 200
	MinPlotHeight     = 10
	MaxPlotHeight     = 800
	DefaultRelTol     = 1e-3
	DefaultAbsTol     = 1e-6
	DefaultMaxSteps   = 500000
	DefaultTimeout    = 30 * time.Second
)

type Config struct {
	Model      string             `yaml:"model"`
	Solver     string             `yaml:"solver"`
	TStop      float64            `yaml:"t_stop"`
	RelTol     float64            `yaml:"rtol"`
	AbsTol     float64            `yaml:"atol"`
	MaxSteps   int                `yaml:"max_steps"`
	MaxStep    float64            `yaml:"max_step,omitempty"`
	Timeout    time.Duration      `yaml:"timeout"`
	Params     map[string]float64 `yaml:"params,omitempty"`
	Init       map[string]float64 `yaml:"init,omitempty"`
	PlotHeight int                `yaml:"plot_height"`
	LogLevel   string             `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "cellcycle",
		Solver:     integrators.DefaultSolver,
		TStop:      DefaultTStop,
		RelTol:     DefaultRelTol,
		AbsTol:     DefaultAbsTol,
		MaxSteps:   DefaultMaxSteps,
		Timeout:    DefaultTimeout,
		PlotHeight: DefaultPlotHeight,
		LogLevel:   "info",
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the ranges the dashboard and CLI accept.
func (c *Config) Validate() error {
	if math.IsNaN(c.TStop) || c.TStop < MinTStop || c.TStop > MaxTStop {
		return fmt.Errorf("%w: t_stop %g outside [%g, %g]", dynamo.ErrInvalidRequest, c.TStop, MinTStop, MaxTStop)
	}
	if c.PlotHeight < MinPlotHeight || c.PlotHeight > MaxPlotHeight {
		return fmt.Errorf("%w: plot_height %d outside [%d, %d]", dynamo.ErrInvalidRequest, c.PlotHeight, MinPlotHeight, MaxPlotHeight)
	}
	if c.RelTol < 0 || c.AbsTol < 0 {
		return fmt.Errorf("%w: negative tolerance", dynamo.ErrInvalidRequest)
	}
	if _, err := integrators.Factory(c.Solver); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy, so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Params = cloneMap(c.Params)
	out.Init = cloneMap(c.Init)
	return &out
}

// SimConfig returns the driver settings.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Solver:   c.Solver,
		RelTol:   c.RelTol,
		AbsTol:   c.AbsTol,
		MaxSteps: c.MaxSteps,
		MaxStep:  c.MaxStep,
		Timeout:  c.Timeout,
	}
}

// Resolve applies the parameter and initial-state overrides to m.
func (c *Config) Resolve(m *dynamo.Model) (dynamo.ParameterSet, dynamo.State, error) {
	ps, err := m.ParamsFromMap(c.Params)
	if err != nil {
		return dynamo.ParameterSet{}, nil, err
	}
	x0, err := m.InitialStateFromMap(c.Init)
	if err != nil {
		return dynamo.ParameterSet{}, nil, err
	}
	return ps, x0, nil
}

// SetParam records a parameter override.
func (c *Config) SetParam(name string, v float64) {
	if c.Params == nil {
		c.Params = make(map[string]float64)
	}
	c.Params[name] = v
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
