package orrery

// CalcTimeDerivatives writes dx/dt into dxdt: the angle half is the rate
// half of x and the rate half is zero. There are no forces; the motion is
// scripted.
func (o *Orrery[T]) CalcTimeDerivatives(x, dxdt []T) {
	demand(len(x) == StateDim && len(dxdt) == StateDim,
		"state/derivative length %d/%d, want %d", len(x), len(dxdt), StateDim)
	zero := o.ops.Const(0)
	copy(dxdt[:BodyCount], x[BodyCount:])
	for i := BodyCount; i < StateDim; i++ {
		dxdt[i] = zero
	}
}

// Derive returns a newly allocated derivative of x.
func (o *Orrery[T]) Derive(x []T) []T {
	dxdt := make([]T, StateDim)
	o.CalcTimeDerivatives(x, dxdt)
	return dxdt
}
