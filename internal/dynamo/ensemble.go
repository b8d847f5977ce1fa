package dynamo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs one trajectory per initial state in parallel. The system is
// shared between workers and must be safe for concurrent Derive calls;
// integrators and controllers are built per run.
type Ensemble struct {
	dyn           System
	newIntegrator func() Integrator
	newController func() Controller
	workers       int
}

func NewEnsemble(dyn System, newIntegrator func() Integrator, newController func() Controller) *Ensemble {
	return &Ensemble{
		dyn:           dyn,
		newIntegrator: newIntegrator,
		newController: newController,
		workers:       runtime.GOMAXPROCS(0),
	}
}

// SetWorkers bounds the number of concurrent runs. n < 1 means one.
func (e *Ensemble) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	e.workers = n
}

// Run returns results in the order of x0s. The first failing run cancels
// the rest.
func (e *Ensemble) Run(ctx context.Context, x0s []State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(x0s))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, x0 := range x0s {
		g.Go(func() error {
			s := New(e.dyn, e.newIntegrator(), e.newController())
			res, err := s.Run(ctx, x0, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
