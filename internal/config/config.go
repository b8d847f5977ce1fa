package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orrery/internal/dynamo"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 10.0
	DefaultTolerance = 1e-6
	DefaultMinDt     = 1e-8
	DefaultMaxDt     = 0.1
	DefaultFPS       = 30
	DefaultDataDir   = "data"
)

var (
	ErrInvalid     = errors.New("config: invalid value")
	ErrUnknownBody = errors.New("config: unknown body")
)

type Config struct {
	Integrator   string          `yaml:"integrator"`
	Dt           float64         `yaml:"dt"`
	Duration     float64         `yaml:"duration"`
	Adaptive     bool            `yaml:"adaptive"`
	Tolerance    float64         `yaml:"tolerance"`
	MinDt        float64         `yaml:"min_dt"`
	MaxDt        float64         `yaml:"max_dt"`
	FPS          int             `yaml:"fps"`
	DataDir      string          `yaml:"data_dir"`
	ResourceDirs []string        `yaml:"resource_dirs"`
	InitState    InitStateConfig `yaml:"init_state"`
}

// InitStateConfig overrides the default state per body. Keys are body
// names, matched case-insensitively. Periods are in seconds; a negative
// period turns the body the other way.
type InitStateConfig struct {
	Angles  map[string]float64 `yaml:"angles,omitempty"`
	Periods map[string]float64 `yaml:"periods,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator:   "rk4",
		Dt:           DefaultDt,
		Duration:     DefaultDuration,
		Tolerance:    DefaultTolerance,
		MinDt:        DefaultMinDt,
		MaxDt:        DefaultMaxDt,
		FPS:          DefaultFPS,
		DataDir:      DefaultDataDir,
		ResourceDirs: []string{"resources"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

func (c *Config) Validate() error {
	switch {
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalid, c.Dt)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalid, c.Duration)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.FPS)
	case c.Adaptive && c.Tolerance <= 0:
		return fmt.Errorf("%w: adaptive stepping needs a positive tolerance", ErrInvalid)
	case c.Adaptive && (c.MinDt <= 0 || c.MaxDt < c.MinDt):
		return fmt.Errorf("%w: need 0 < min_dt <= max_dt", ErrInvalid)
	}
	for name, p := range c.InitState.Periods {
		if p == 0 {
			return fmt.Errorf("%w: period of %s is zero", ErrInvalid, name)
		}
	}
	return nil
}

// Sim returns the host configuration for a run.
func (c *Config) Sim() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		Tolerance:     c.Tolerance,
		MinDt:         c.MinDt,
		MaxDt:         c.MaxDt,
		Adaptive:      c.Adaptive,
		ValidateState: true,
	}
}

// GetInitState applies the configured overrides to base, a state of
// len(names) angles followed by len(names) rates. base is not modified.
func (c *Config) GetInitState(names []string, base []float64) ([]float64, error) {
	n := len(names)
	if len(base) != 2*n {
		return nil, fmt.Errorf("%w: base state has %d entries for %d bodies", ErrInvalid, len(base), n)
	}
	x := append([]float64(nil), base...)

	index := make(map[string]int, n)
	for i, name := range names {
		index[strings.ToLower(name)] = i
	}

	for name, angle := range c.InitState.Angles {
		i, ok := index[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBody, name)
		}
		x[i] = angle
	}
	for name, period := range c.InitState.Periods {
		i, ok := index[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBody, name)
		}
		if period == 0 {
			return nil, fmt.Errorf("%w: period of %s is zero", ErrInvalid, name)
		}
		x[n+i] = 2 * math.Pi / period
	}
	return x, nil
}
