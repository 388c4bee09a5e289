package main

import (
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/san-kum/odedash/internal/api"
	"github.com/san-kum/odedash/internal/logging"
)

func newServeCmd() *cobra.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the simulation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, nil)
			if err != nil {
				return err
			}
			log := logging.NewJSONLogger(cfg.LogLevel, os.Stderr)
			ctx := logging.WithContext(cmd.Context(), log)

			server := api.NewServer(registry, cfg, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			logging.FromContext(ctx).Info("starting server", "address", addr, "model", cfg.Model, "solver", cfg.Solver)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "read header timeout")
	return serveCmd
}
