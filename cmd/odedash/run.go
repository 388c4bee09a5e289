package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/odedash/internal/analysis"
	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/experiment"
	"github.com/san-kum/odedash/internal/export"
)

var (
	csvOut    string
	jsonOut   string
	plotDir   string
	plotFmt   string
	showPlot  bool
	outDir    string
	phaseX    string
	phaseY    string
	section   string
	threshold float64
	width     int
	height    int
	sweepName string
	sweepN    int
	workers   int
	sweepVar  string
	bifurc    bool
)

var (
	header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	faint  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	warn   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation and print summary metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&csvOut, "csv", "", "write samples as CSV (- for stdout)")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "write the run as JSON (- for stdout)")
	runCmd.Flags().StringVar(&plotDir, "png", "", "write one plot per variable into this directory")
	runCmd.Flags().StringVar(&plotFmt, "format", "png", "plot image format: png or svg")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "print an ascii plot per variable")
	runCmd.Flags().StringVar(&outDir, "out", "", "write metadata.json and states.csv into this directory")
	return runCmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args, nil)
	if err != nil {
		return err
	}

	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	run := exp.Export(res)
	out := cmd.OutOrStdout()

	if jsonOut != "-" && csvOut != "-" {
		printSummary(out, exp, res)
		if showPlot {
			printPlots(out, res.Trajectory, 70, max(2, exp.Config().PlotHeight/20))
		}
	}

	if csvOut != "" {
		if err := writeTo(csvOut, out, func(w io.Writer) error { return export.WriteCSV(w, res.Trajectory) }); err != nil {
			return err
		}
	}
	if jsonOut != "" {
		if err := writeTo(jsonOut, out, func(w io.Writer) error { return export.WriteJSON(w, run) }); err != nil {
			return err
		}
	}
	if plotDir != "" {
		paths, err := export.WritePlots(plotDir, res.Trajectory, plotFmt, exp.Config().PlotHeight)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d plots to %s\n", len(paths), plotDir)
	}
	if outDir != "" {
		if err := export.WriteBundle(outDir, run); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote run %s to %s\n", run.ID, outDir)
	}

	return res.Err
}

func writeTo(path string, stdout io.Writer, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(out io.Writer, exp *experiment.Experiment, res *experiment.Result) {
	tr := res.Trajectory
	st := tr.Stats

	fmt.Fprintln(out, header.Render(fmt.Sprintf("%s  t=[0, %g]  solver=%s", exp.Model().Name(), exp.Config().TStop, exp.Config().Solver)))
	fmt.Fprintln(out, faint.Render(fmt.Sprintf(
		"samples=%d accepted=%d rejected=%d evals=%d jacobians=%d stiff=%d nonstiff=%d switches=%d",
		tr.Len(), st.Accepted, st.Rejected, st.Evaluations, st.Jacobians, st.StiffSteps, st.NonStiffSteps, st.MethodSwitches)))
	if res.Err != nil {
		fmt.Fprintln(out, warn.Render(fmt.Sprintf("stopped at t=%g: %v", tr.EndTime(), res.Err)))
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, m := range res.Metrics {
		fmt.Fprintf(w, "%s\t%.6g\n", m.Name, m.Value)
	}
	w.Flush()
}

func printPlots(out io.Writer, tr *dynamo.Trajectory, width, rows int) {
	for _, name := range tr.Names {
		_, ys, err := analysis.Resample(tr, name, 0, width)
		if err != nil {
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(ys, asciigraph.Height(rows), asciigraph.Width(width), asciigraph.Caption(name)))
	}
}

func newPhaseCmd() *cobra.Command {
	phaseCmd := &cobra.Command{
		Use:   "phase [model]",
		Short: "phase space plot of two variables",
		Args:  cobra.MaximumNArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&phaseX, "x", "", "x axis variable (default: first)")
	phaseCmd.Flags().StringVar(&phaseY, "y", "", "y axis variable (default: second)")
	phaseCmd.Flags().StringVar(&section, "section", "", "plot a Poincaré section where this variable rises through --threshold")
	phaseCmd.Flags().Float64Var(&threshold, "threshold", 0, "section threshold")
	phaseCmd.Flags().IntVar(&width, "width", 70, "plot width")
	phaseCmd.Flags().IntVar(&height, "height", 25, "plot height")
	return phaseCmd
}

func phasePlot(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args, nil)
	if err != nil {
		return err
	}
	names := exp.Model().VariableNames()
	x, y := phaseX, phaseY
	if x == "" {
		x = names[0]
	}
	if y == "" {
		y = names[min(1, len(names)-1)]
	}

	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if section != "" {
		points, err := analysis.PoincareSection(res.Trajectory, section, threshold, x, y)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, header.Render(fmt.Sprintf("section %s↑%g: %s vs %s (%d crossings)", section, threshold, y, x, len(points))))
		fmt.Fprint(out, analysis.SectionASCII(points, width, height))
		return res.Err
	}

	portrait, err := analysis.PhasePortrait(res.Trajectory, x, y)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, header.Render(fmt.Sprintf("%s vs %s", y, x)))
	fmt.Fprint(out, portrait.ASCII(width, height))
	return res.Err
}

func newSweepCmd() *cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "sweep one parameter across its bounds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepName, "param", "", "parameter to sweep")
	sweepCmd.Flags().IntVar(&sweepN, "steps", 11, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent simulations (default: GOMAXPROCS)")
	sweepCmd.Flags().StringVar(&sweepVar, "var", "", "variable to summarize (default: first)")
	sweepCmd.Flags().BoolVar(&bifurc, "bifurcation", false, "print a bifurcation diagram of --var")
	_ = sweepCmd.MarkFlagRequired("param")
	return sweepCmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args, nil)
	if err != nil {
		return err
	}
	v := sweepVar
	if v == "" {
		v = exp.Model().VariableNames()[0]
	}
	if _, ok := exp.Model().VariableIndex(v); !ok {
		return fmt.Errorf("%w: no variable %q", dynamo.ErrInvalidRequest, v)
	}

	results, err := exp.Sweep(cmd.Context(), sweepName, sweepN, workers)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	transient := exp.Config().TStop / 2

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL %s\tPERIOD\tSTEPS\tSTATUS\n", sweepName, v)
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		var final, period float64
		steps := 0
		if r.Trajectory != nil {
			series, _ := r.Trajectory.Series(v)
			final = series[len(series)-1]
			steps = r.Trajectory.Stats.Accepted
			if r.Err == nil {
				period, _ = analysis.DominantPeriod(r.Trajectory, v, transient, 1024)
			}
		}
		fmt.Fprintf(w, "%.4g\t%.6g\t%.4g\t%d\t%s\n", r.Value, final, period, steps, status)
	}
	w.Flush()

	if bifurc {
		points, err := analysis.Bifurcation(results, v, transient)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, header.Render(fmt.Sprintf("peaks of %s vs %s", v, sweepName)))
		fmt.Fprint(out, analysis.BifurcationToASCII(points, 70, 20))
	}
	return nil
}
