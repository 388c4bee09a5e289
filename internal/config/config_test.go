package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "cellcycle" {
		t.Errorf("expected model cellcycle, got %s", cfg.Model)
	}
	if cfg.TStop != 1000 {
		t.Errorf("expected t_stop 1000, got %g", cfg.TStop)
	}
	if cfg.PlotHeight != 200 {
		t.Errorf("expected plot height 200, got %d", cfg.PlotHeight)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `
model: repressilator
t_stop: 250
solver: rk45
timeout: 5s
params:
  alpha: 100
init:
  mLacI: 1.5
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "repressilator" || cfg.TStop != 250 || cfg.Solver != "rk45" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Timeout)
	}
	// unset keys keep their defaults
	if cfg.RelTol != DefaultRelTol || cfg.PlotHeight != DefaultPlotHeight {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Params["alpha"] != 100 || cfg.Init["mLacI"] != 1.5 {
		t.Errorf("overrides not loaded: %v %v", cfg.Params, cfg.Init)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"short horizon": "t_stop: 0.00001\n",
		"long horizon":  "t_stop: 20000\n",
		"plot height":   "plot_height: 5\n",
		"solver":        "solver: euler\n",
		"syntax":        "t_stop: [\n",
	}
	for name, data := range tests {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.SetParam("ks", 2.5)

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Params["ks"] != 2.5 || loaded.Timeout != cfg.Timeout {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestResolve(t *testing.T) {
	m, err := models.NewCellCycle()
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Params = map[string]float64{"ks": 2}
	cfg.Init = map[string]float64{"N": 0.4}

	ps, x0, err := cfg.Resolve(m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ps.Value("ks") != 2 || ps.Value("W") != 0.6 {
		t.Errorf("unexpected parameters %v", ps.Map())
	}
	if x0[6] != 0.4 || x0[4] != 0.27 {
		t.Errorf("unexpected initial state %v", x0)
	}

	cfg.Params = map[string]float64{"bogus": 1}
	if _, _, err := cfg.Resolve(m); !errors.Is(err, dynamo.ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}
}

func TestSimConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Solver = "rosenbrock"
	sc := cfg.SimConfig()
	if sc.Solver != "rosenbrock" || sc.RelTol != cfg.RelTol || sc.Timeout != cfg.Timeout {
		t.Errorf("unexpected sim config %+v", sc)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("cellcycle", "fast-synthesis")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params["ks"] != 3.0 {
		t.Errorf("expected ks 3.0, got %g", cfg.Params["ks"])
	}

	cfg.Params["ks"] = 0
	if GetPreset("cellcycle", "fast-synthesis").Params["ks"] != 3.0 {
		t.Error("preset mutated through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("cellcycle", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "default") != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPresetsResolve(t *testing.T) {
	reg := models.NewRegistry()
	for model := range Presets {
		m, err := reg.Get(model)
		if err != nil {
			t.Fatalf("preset model %s: %v", model, err)
		}
		for _, name := range ListPresets(model) {
			cfg := DefaultConfig()
			cfg.Apply(GetPreset(model, name))
			ps, _, err := cfg.Resolve(m)
			if err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
				continue
			}
			for _, p := range m.Parameters() {
				if v := ps.Value(p.Name); v < p.Min || v > p.Max {
					t.Errorf("%s/%s: %s=%g outside bounds", model, name, p.Name, v)
				}
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("cellcycle")
	if len(presets) == 0 || presets[0] != "default" {
		t.Errorf("unexpected presets %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent model")
	}
}
