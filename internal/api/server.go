// Package api serves model metadata and simulations over HTTP.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/san-kum/odedash/internal/config"
	"github.com/san-kum/odedash/internal/experiment"
	"github.com/san-kum/odedash/internal/logging"
	"github.com/san-kum/odedash/internal/models"
)

type Server struct {
	registry *models.Registry
	base     *config.Config
	logger   *slog.Logger
}

// NewServer serves the models in reg. base supplies the solver settings and
// horizon for requests that leave them out.
func NewServer(reg *models.Registry, base *config.Config, logger *slog.Logger) *Server {
	if base == nil {
		base = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{registry: reg, base: base.Clone(), logger: logger}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/api/models", s.handleListModels)
	e.GET("/api/models/:name", s.handleGetModel)
	e.POST("/api/models/:name/simulate", s.handleSimulate)
}

func (s *Server) handleListModels(c *echo.Context) error {
	names := s.registry.List()
	out := make([]ModelSummary, 0, len(names))
	for _, name := range names {
		m, err := s.registry.Get(name)
		if err != nil {
			s.logger.Error("model failed validation", "model", name, "err", err)
			continue
		}
		out = append(out, ModelSummary{
			Name:        m.Name(),
			Description: m.Description(),
			Variables:   m.VariableNames(),
			Parameters:  m.NumParams(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetModel(c *echo.Context) error {
	m, err := s.registry.Get(c.Param("name"))
	if err != nil {
		return writeNotFound(c, err.Error())
	}
	return c.JSON(http.StatusOK, ModelInfo{
		Name:        m.Name(),
		Description: m.Description(),
		Variables:   m.Variables(),
		Parameters:  m.Parameters(),
		Presets:     config.ListPresets(m.Name()),
	})
}

func (s *Server) handleSimulate(c *echo.Context) error {
	name := c.Param("name")
	if _, err := s.registry.Get(name); err != nil {
		return writeNotFound(c, err.Error())
	}

	req, err := decodeJSON[SimulateRequest](c.Request().Body)
	if err != nil && !errors.Is(err, io.EOF) {
		return writeBadRequest(c, "invalid JSON body: "+err.Error())
	}
	if req.Params != nil && req.Set != nil {
		return writeBadRequest(c, "params and set are mutually exclusive")
	}

	cfg := s.base.Clone()
	cfg.Model = name
	cfg.Params = req.Set
	cfg.Init = req.Init
	if req.TStop != nil {
		cfg.TStop = *req.TStop
	}
	if req.Solver != "" {
		cfg.Solver = req.Solver
	}

	exp, err := experiment.New(cfg, s.registry, s.logger)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	ps := exp.Params()
	if req.Params != nil {
		if ps, err = exp.Model().Params(req.Params); err != nil {
			return writeBadRequest(c, err.Error())
		}
	}

	res, err := exp.RunParams(c.Request().Context(), ps)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	run := exp.Export(res)
	if res.Err != nil {
		s.logger.Warn("simulation failed", "model", name, "run", run.ID, "err", res.Err)
		return c.JSON(http.StatusUnprocessableEntity, run)
	}
	s.logger.Info("simulation complete", "model", name, "run", run.ID, "samples", res.Trajectory.Len())
	return c.JSON(http.StatusOK, run)
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
