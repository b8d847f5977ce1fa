package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/control"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/orrery"
	"github.com/san-kum/orrery/internal/storage"
)

// Experiment is one configured orrery run: a scene with the orrery
// registered in it, the simulator that advances it and the initial state.
type Experiment struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *Registry
	scene     *geometry.Scene
	orrery    *orrery.Orrery[float64]
	system    *orrery.System
	simulator *dynamo.Simulator
	initState dynamo.State
}

type Option func(*Experiment)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Experiment) {
		e.logger = logger
	}
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) {
		e.registry = r
	}
}

func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Experiment{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}

	integ, err := e.registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	e.scene = geometry.NewScene(geometry.WithLogger(e.logger))
	e.orrery, err = orrery.NewFloat64(e.scene,
		orrery.WithLogger(e.logger),
		orrery.WithResourceDirs(cfg.ResourceDirs...))
	if err != nil {
		return nil, err
	}
	e.system = orrery.NewSystem(e.orrery)

	x0, err := cfg.GetInitState(e.orrery.BodyNames(), e.system.DefaultState())
	if err != nil {
		return nil, err
	}
	e.initState = x0

	e.simulator = dynamo.New(e.system, integ, control.For(e.system), dynamo.WithLogger(e.logger))
	for _, m := range e.registry.DefaultMetrics(e.orrery.BodyNames()) {
		e.simulator.AddMetric(m)
	}

	e.logger.Info("experiment ready", "integrator", cfg.Integrator, "dt", cfg.Dt, "duration", cfg.Duration)
	return e, nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	result, err := e.simulator.Run(ctx, e.initState.Clone(), e.cfg.Sim())
	if err != nil {
		return result, fmt.Errorf("experiment: %w", err)
	}
	for _, runErr := range result.Errors {
		e.logger.Warn("run error", "err", runErr)
	}
	return result, nil
}

// AddObserver attaches o to the simulator before Run.
func (e *Experiment) AddObserver(o dynamo.Observer) { e.simulator.AddObserver(o) }

func (e *Experiment) Simulator() *dynamo.Simulator    { return e.simulator }
func (e *Experiment) System() *orrery.System          { return e.system }
func (e *Experiment) Orrery() *orrery.Orrery[float64] { return e.orrery }
func (e *Experiment) Scene() *geometry.Scene          { return e.scene }
func (e *Experiment) Config() *config.Config          { return e.cfg }

// InitState returns a copy of the initial state.
func (e *Experiment) InitState() dynamo.State { return e.initState.Clone() }

// NewIntegrator returns a fresh integrator of the configured kind.
func (e *Experiment) NewIntegrator() dynamo.Integrator {
	integ, _ := e.registry.GetIntegrator(e.cfg.Integrator)
	return integ
}

func (e *Experiment) RunInfo() storage.RunInfo {
	return storage.RunInfo{
		Integrator: e.cfg.Integrator,
		Dt:         e.cfg.Dt,
		Duration:   e.cfg.Duration,
		Adaptive:   e.cfg.Adaptive,
		Bodies:     e.orrery.BodyNames(),
	}
}
