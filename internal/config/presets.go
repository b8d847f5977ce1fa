package config

import (
	"maps"
	"slices"
)

var Presets = map[string]*Config{
	"realtime": {
		Integrator: "rk4", Dt: 1.0 / 60, Duration: 30.0, FPS: 30,
	},
	"precise": {
		Integrator: "rk45", Dt: 0.01, Duration: 60.0, FPS: 30,
		Adaptive: true, Tolerance: 1e-10, MinDt: 1e-8, MaxDt: 0.05,
	},
	"long": {
		Integrator: "euler", Dt: 0.05, Duration: 600.0, FPS: 30,
	},
	"aligned": {
		Integrator: "rk4", Dt: 0.01, Duration: 30.0, FPS: 30,
		InitState: InitStateConfig{
			Angles: map[string]float64{"earth": 0, "luna": 0, "mars": 0, "phobos": 0},
		},
	},
}

// GetPreset returns a copy of the named preset merged over the defaults,
// or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Integrator = p.Integrator
	cfg.Dt = p.Dt
	cfg.Duration = p.Duration
	cfg.FPS = p.FPS
	cfg.Adaptive = p.Adaptive
	if p.Tolerance > 0 {
		cfg.Tolerance = p.Tolerance
	}
	if p.MinDt > 0 {
		cfg.MinDt = p.MinDt
	}
	if p.MaxDt > 0 {
		cfg.MaxDt = p.MaxDt
	}
	cfg.InitState = InitStateConfig{
		Angles:  maps.Clone(p.InitState.Angles),
		Periods: maps.Clone(p.InitState.Periods),
	}
	return cfg
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
