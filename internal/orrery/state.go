package orrery

import "math"

// Initial angles and revolution periods (seconds), in body order. Distinct
// periods keep the bodies from moving in lockstep.
var (
	initialAngles = [BodyCount]float64{0, math.Pi / 2, math.Pi / 2, 0}
	periods       = [BodyCount]float64{5, 1, 6, 1.1}
)

// Period returns the revolution period of body i at the default rates.
func Period(i int) float64 { return periods[i] }

// SetDefaultState writes the initial angles and rates into xc and zeroes
// every discrete group in xd. xc must have exactly StateDim entries.
func (o *Orrery[T]) SetDefaultState(xc []T, xd [][]T) {
	demand(len(xc) == StateDim, "continuous state has %d entries, want %d", len(xc), StateDim)
	for i := 0; i < BodyCount; i++ {
		xc[i] = o.ops.Const(initialAngles[i])
		xc[BodyCount+i] = o.ops.Const(2 * math.Pi / periods[i])
	}
	for _, group := range xd {
		for j := range group {
			group[j] = o.ops.Const(0)
		}
	}
}

// DefaultState returns a freshly allocated default continuous state.
func (o *Orrery[T]) DefaultState() []T {
	x := make([]T, StateDim)
	o.SetDefaultState(x, nil)
	return x
}
