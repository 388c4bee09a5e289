package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/odedash/internal/config"
	"github.com/san-kum/odedash/internal/dashboard"
	"github.com/san-kum/odedash/internal/experiment"
	"github.com/san-kum/odedash/internal/logging"
	"github.com/san-kum/odedash/internal/models"
)

var (
	configFile string
	preset     string
	sets       []string
	inits      []string
	tStop      float64
	solver     string
	rtol       float64
	atol       float64
	maxSteps   int
	logLevel   string
	logFile    string
)

var registry = models.NewRegistry()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "odedash [model]",
		Short:        "interactive ODE model explorer",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runDashboard,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringArrayVar(&sets, "set", nil, "parameter override name=value (repeatable)")
	pf.StringArrayVar(&inits, "init", nil, "initial state override name=value (repeatable)")
	pf.Float64Var(&tStop, "time", config.DefaultTStop, "simulation end time")
	pf.StringVar(&solver, "solver", "auto", "solver: auto, rk45 or rosenbrock")
	pf.Float64Var(&rtol, "rtol", config.DefaultRelTol, "relative tolerance")
	pf.Float64Var(&atol, "atol", config.DefaultAbsTol, "absolute tolerance")
	pf.IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "maximum integration steps")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	dashCmd := &cobra.Command{
		Use:   "dash [model]",
		Short: "parameter slider dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDashboard,
	}
	for _, c := range []*cobra.Command{rootCmd, dashCmd} {
		c.Flags().StringVar(&logFile, "log-file", "", "write dashboard logs to this file")
	}

	rootCmd.AddCommand(
		dashCmd,
		newRunCmd(),
		newPhaseCmd(),
		newSweepCmd(),
		newServeCmd(),
		newModelsCmd(),
		newParamsCmd(),
		newPresetsCmd(),
	)
	return rootCmd
}

// resolveConfig layers the config file, the preset, the model argument and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Model = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (available: %v)", preset, cfg.Model, config.ListPresets(cfg.Model))
		}
		cfg.Apply(p)
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.TStop = tStop
	}
	if flags.Changed("solver") {
		cfg.Solver = solver
	}
	if flags.Changed("rtol") {
		cfg.RelTol = rtol
	}
	if flags.Changed("atol") {
		cfg.AbsTol = atol
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	for _, s := range sets {
		name, v, err := parseAssignment(s)
		if err != nil {
			return nil, err
		}
		cfg.SetParam(name, v)
	}
	for _, s := range inits {
		name, v, err := parseAssignment(s)
		if err != nil {
			return nil, err
		}
		if cfg.Init == nil {
			cfg.Init = make(map[string]float64)
		}
		cfg.Init[name] = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseAssignment(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("expected name=value, got %q", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return strings.TrimSpace(name), v, nil
}

func newExperiment(cmd *cobra.Command, args []string, logger *slog.Logger) (*experiment.Experiment, error) {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewLogger(cfg.LogLevel, os.Stderr)
	}
	return experiment.New(cfg, registry, logger)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	var w io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	exp, err := newExperiment(cmd, args, logging.NewLogger(logLevel, w))
	if err != nil {
		return err
	}
	return dashboard.Run(exp)
}
