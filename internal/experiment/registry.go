package experiment

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/integrators"
	"github.com/san-kum/orrery/internal/metrics"
)

var ErrUnknownIntegrator = errors.New("experiment: unknown integrator")

type Registry struct {
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }
	r.integrators["leapfrog"] = func() dynamo.Integrator { return integrators.NewLeapfrog() }

	return r
}

// Register adds or replaces an integrator factory.
func (r *Registry) Register(name string, fn func() dynamo.Integrator) {
	r.integrators[strings.ToLower(name)] = fn
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

// IntegratorFactory returns the factory itself, for callers that need one
// integrator per goroutine.
func (r *Registry) IntegratorFactory(name string) (func() dynamo.Integrator, error) {
	fn, ok := r.integrators[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn, nil
}

func (r *Registry) ListIntegrators() []string {
	return slices.Sorted(maps.Keys(r.integrators))
}

// DefaultMetrics returns fresh metrics for a run over the named bodies.
func (r *Registry) DefaultMetrics(bodies []string) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewPhaseError(),
		metrics.NewRateDrift(),
	}
	for i, name := range bodies {
		ms = append(ms, metrics.NewRevolutions(strings.ToLower(name), i))
	}
	return ms
}
