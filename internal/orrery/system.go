package orrery

import "github.com/san-kum/orrery/internal/dynamo"

// System adapts a float64 orrery to dynamo.System so the generic
// integrators can drive it. The orrery takes no inputs and does not depend
// on time.
type System struct {
	*Orrery[float64]
}

func NewSystem(o *Orrery[float64]) *System {
	demand(o != nil, "nil orrery")
	return &System{Orrery: o}
}

func (s *System) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	dx := make(dynamo.State, StateDim)
	s.CalcTimeDerivatives(x, dx)
	return dx
}

func (s *System) ControlDim() int { return 0 }

func (s *System) DefaultState() dynamo.State {
	return s.Orrery.DefaultState()
}

// Angles returns the angle half of x.
func Angles(x dynamo.State) []float64 {
	return x[:BodyCount]
}

var _ dynamo.System = (*System)(nil)
