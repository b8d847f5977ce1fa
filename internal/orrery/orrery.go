package orrery

import (
	"fmt"
	"io"
	"log/slog"

	"gonum.org/v1/gonum/num/dual"

	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/spatial"
)

const (
	DefaultSourceName  = "solar_system"
	DefaultRingsMesh   = "planet_rings.obj"
	DefaultResourceDir = "resources"
)

// Orrery is the constructed model. T is the scalar type of the state and
// the emitted poses.
type Orrery[T any] struct {
	ops    spatial.Arithmetic[T]
	logger *slog.Logger
	source geometry.SourceID
	bodies [BodyCount]Body
}

type options struct {
	logger       *slog.Logger
	sourceName   string
	ringsMesh    string
	resourceDirs []string
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithResourceDirs sets the directories searched for mesh files.
func WithResourceDirs(dirs ...string) Option {
	return func(o *options) {
		o.resourceDirs = append([]string(nil), dirs...)
	}
}

// WithRingsMesh overrides the OBJ file used for the planet rings.
func WithRingsMesh(name string) Option {
	return func(o *options) {
		o.ringsMesh = name
	}
}

func WithSourceName(name string) Option {
	return func(o *options) {
		o.sourceName = name
	}
}

// New registers the orrery with engine and returns the constructed model.
// It fails if the engine rejects a registration or a mesh resource cannot
// be found; nothing is retried.
func New[T any](ops spatial.Arithmetic[T], engine geometry.Engine, opts ...Option) (*Orrery[T], error) {
	demand(ops != nil, "nil scalar arithmetic")
	demand(engine != nil, "nil geometry engine")

	cfg := options{
		sourceName:   DefaultSourceName,
		ringsMesh:    DefaultRingsMesh,
		resourceDirs: []string{DefaultResourceDir},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rings, err := geometry.FindResource(cfg.ringsMesh, cfg.resourceDirs...)
	if err != nil {
		return nil, fmt.Errorf("orrery: %w", err)
	}

	o := &Orrery[T]{ops: ops, logger: cfg.logger}
	o.source = engine.RegisterSource(cfg.sourceName)
	demand(o.source.IsValid(), "engine returned invalid source id %v", o.source)

	b := &builder{engine: engine, source: o.source, rings: rings, logger: cfg.logger}
	reg, err := b.build()
	if err != nil {
		return nil, fmt.Errorf("orrery: %w", err)
	}
	o.bodies = reg.bodies

	o.logger.Info("orrery constructed", "source", o.source, "bodies", BodyCount)
	return o, nil
}

func NewFloat64(engine geometry.Engine, opts ...Option) (*Orrery[float64], error) {
	return New[float64](spatial.Float64{}, engine, opts...)
}

// NewDual builds a model whose poses carry derivatives with respect to a
// seeded state entry.
func NewDual(engine geometry.Engine, opts ...Option) (*Orrery[dual.Number], error) {
	return New[dual.Number](spatial.Dual{}, engine, opts...)
}

func (o *Orrery[T]) Source() geometry.SourceID { return o.source }

// Bodies returns a copy of the body registry.
func (o *Orrery[T]) Bodies() [BodyCount]Body { return o.bodies }

func (o *Orrery[T]) Body(i int) Body { return o.bodies[i] }

func (o *Orrery[T]) BodyNames() []string {
	names := make([]string, BodyCount)
	for i, b := range o.bodies {
		names[i] = b.Name
	}
	return names
}

func (o *Orrery[T]) StateDim() int { return StateDim }
