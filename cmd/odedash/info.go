package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/odedash/internal/config"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "list available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVARS\tPARAMS\tDESCRIPTION")
			for _, name := range registry.List() {
				m, err := registry.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, m.Dim(), m.NumParams(), m.Description())
			}
			return w.Flush()
		},
	}
}

func newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params [model]",
		Short: "list parameters and variables of a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			m, err := registry.Get(cfg.Model)
			if err != nil {
				return err
			}
			ps, x0, err := cfg.Resolve(m)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, header.Render(m.Name()+": "+m.Description()))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PARAM\tVALUE\tDEFAULT\tMIN\tMAX\tSTEP")
			for _, p := range m.Parameters() {
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\n", p.Name, ps.Value(p.Name), p.Init, p.Min, p.Max, p.Step())
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "VAR\tINIT\tDEFAULT")
			for i, v := range m.Variables() {
				fmt.Fprintf(w, "%s\t%g\t%g\n", v.Name, x0[i], v.Init)
			}
			return w.Flush()
		},
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := registry.List()
			if len(args) > 0 {
				if _, err := registry.Get(args[0]); err != nil {
					return err
				}
				names = args
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tPRESET\tOVERRIDES")
			for _, model := range names {
				for _, name := range config.ListPresets(model) {
					fmt.Fprintf(w, "%s\t%s\t%s\n", model, name, describePreset(config.GetPreset(model, name)))
				}
			}
			return w.Flush()
		},
	}
}

func describePreset(c *config.Config) string {
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(c.Params)) {
		parts = append(parts, fmt.Sprintf("%s=%g", k, c.Params[k]))
	}
	for _, k := range slices.Sorted(maps.Keys(c.Init)) {
		parts = append(parts, fmt.Sprintf("%s(0)=%g", k, c.Init[k]))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
