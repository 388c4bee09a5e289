package config

import "sort"

var Presets = map[string]map[string]*Config{
	"cellcycle": {
		"default": {
			Model: "cellcycle", TStop: 1000,
		},
		"fast-synthesis": {
			Model: "cellcycle", TStop: 500,
			Params: map[string]float64{"ks": 3.0},
		},
		"wee1-arrest": {
			Model: "cellcycle", TStop: 1000,
			Params: map[string]float64{"W": 2.5, "Wn": 2.5},
		},
		"no-feedback": {
			Model: "cellcycle", TStop: 1000,
			Params: map[string]float64{"bT": 0, "bW": 0},
		},
		"leaky-import": {
			Model: "cellcycle", TStop: 1000,
			Params: map[string]float64{"aI": 0.5},
		},
	},
	"repressilator": {
		"default": {
			Model: "repressilator", TStop: 100,
		},
		"damped": {
			Model: "repressilator", TStop: 100,
			Params: map[string]float64{"alpha": 5, "n": 1.5},
		},
		"leaky": {
			Model: "repressilator", TStop: 100,
			Params: map[string]float64{"alpha0": 2.0},
		},
		"symmetric": {
			Model: "repressilator", TStop: 100,
			Init: map[string]float64{"mLacI": 0.1, "mTetR": 0.1, "mCI": 0.1},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names for model in sorted order.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply overlays a preset onto c: model, horizon and overrides.
func (c *Config) Apply(p *Config) {
	c.Model = p.Model
	if p.TStop > 0 {
		c.TStop = p.TStop
	}
	c.Params = cloneMap(p.Params)
	c.Init = cloneMap(p.Init)
}
