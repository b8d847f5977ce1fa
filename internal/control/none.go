package control

import "github.com/san-kum/orrery/internal/dynamo"

// None returns a zero input vector of fixed size. The orrery is autonomous,
// so its controller is a None of size zero.
type None struct {
	dim int
}

func NewNone(dim int) *None {
	if dim < 0 {
		dim = 0
	}
	return &None{
		dim: dim,
	}
}

func (n *None) Compute(x dynamo.State, t float64) dynamo.Control {
	return make(dynamo.Control, n.dim)
}

// For returns a None sized to the system's control dimension.
func For(sys dynamo.System) *None {
	return NewNone(sys.ControlDim())
}
