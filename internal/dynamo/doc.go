// Package dynamo provides the simulation host that advances a continuous
// state through time.
//
// The package defines the interfaces a model and its numerical method
// meet at:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical integrator interface
//   - [Controller]: input source, a pass-through for autonomous models
//   - [Simulator]: orchestrates simulation runs
//
// # Example
//
//	sys := orrery.NewSystem(o)
//	s := dynamo.New(sys, integrators.NewRK4(), control.For(sys))
//	result, err := s.Run(ctx, sys.DefaultState(), dynamo.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe, and neither are integrators
// that keep scratch buffers. For parallel runs use [Ensemble], which builds
// one integrator per worker.
package dynamo
