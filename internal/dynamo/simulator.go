package dynamo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
	logger     *slog.Logger
}

type Option func(*Simulator)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

func New(dyn System, integrator Integrator, controller Controller, opts ...Option) *Simulator {
	s := &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	s.logger.Debug("run started", "dt", cfg.Dt, "duration", cfg.Duration, "adaptive", cfg.Adaptive)

	for i := 0; ; i++ {
		if cfg.Adaptive {
			if t >= cfg.Duration-cfg.MinDt {
				break
			}
		} else if i >= steps {
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		var newX State
		used := dt
		if cfg.Adaptive {
			var (
				rejected int
				err      error
			)
			newX, used, dt, rejected, err = s.adaptiveStep(x, u, t, math.Min(dt, cfg.Duration-t), cfg)
			result.Rejected += rejected
			if err != nil {
				result.Errors = append(result.Errors, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err})
				break
			}
		} else {
			newX = s.integrator.Step(s.dyn, x, u, t, dt)
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			break
		}

		x = newX
		if cfg.Adaptive {
			t += used
		} else {
			t = float64(i+1) * cfg.Dt
		}
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("run finished", "steps", result.StepsTaken, "rejected", result.Rejected, "t", t)
	return result, nil
}

func (s *Simulator) validate(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", ErrInvalidConfig)
	}
	if cfg.Adaptive && (cfg.MinDt <= 0 || cfg.MaxDt < cfg.MinDt) {
		return fmt.Errorf("%w: need 0 < min dt <= max dt", ErrInvalidConfig)
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: state has %d entries, system wants %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	return nil
}

// adaptiveStep advances x by one accepted step starting from a trial of dt.
// It returns the new state, the step actually taken, the step to try next
// and how many trials were rejected.
func (s *Simulator) adaptiveStep(x State, u Control, t, dt float64, cfg Config) (State, float64, float64, int, error) {
	rejected := 0
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		for {
			newX, next, err := adaptive.StepAdaptive(s.dyn, x, u, t, dt, cfg.Tolerance)
			if errors.Is(err, ErrStepRejected) {
				rejected++
				if next < cfg.MinDt {
					return nil, 0, 0, rejected, fmt.Errorf("%w: %g", ErrStepTooSmall, next)
				}
				dt = next
				continue
			}
			if err != nil {
				return nil, 0, 0, rejected, err
			}
			return newX, dt, math.Min(next, cfg.MaxDt), rejected, nil
		}
	}

	// Step doubling for integrators without their own error estimate.
	for {
		x1 := s.integrator.Step(s.dyn, x, u, t, dt)
		xHalf := s.integrator.Step(s.dyn, x, u, t, dt/2)
		x2 := s.integrator.Step(s.dyn, xHalf, u, t+dt/2, dt/2)

		errEst := x1.Sub(x2).Norm()
		if errEst > cfg.Tolerance && dt/2 >= cfg.MinDt {
			rejected++
			dt /= 2
			continue
		}

		next := dt
		if errEst < cfg.Tolerance/10 {
			next = math.Min(dt*2, cfg.MaxDt)
		}
		return x2, dt, next, rejected, nil
	}
}

// RunWithCallback steps until the duration elapses or callback returns
// false. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, Control, float64) bool) error {
	if err := s.validate(x0, cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	for i := 0; t < cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)

		if !callback(x, u, t) {
			return nil
		}

		x = s.integrator.Step(s.dyn, x, u, t, dt)
		t = float64(i+1) * dt

		if cfg.ValidateState && !x.IsValid() {
			return fmt.Errorf("%w at t=%.4f", ErrInvalidState, t)
		}
	}

	return nil
}
