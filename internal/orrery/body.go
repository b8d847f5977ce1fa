package orrery

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/spatial"
)

// BodyCount is the number of moving bodies. Index i refers to the same body
// in the registry, the state vector and both output vectors.
const BodyCount = 4

// StateDim is the length of the continuous state: one angle and one
// angular rate per body.
const StateDim = 2 * BodyCount

const (
	Earth = iota
	Luna
	Mars
	Phobos
)

// Body is one registry entry. Offset is the frame's pose relative to its
// parent at zero angle; only its rotation changes at run time.
type Body struct {
	Name   string
	Frame  geometry.FrameID
	Parent geometry.FrameID
	Offset spatial.Transform[float64]
	Axis   r3.Vec
}

// registry collects bodies in registration order. Its size is fixed at
// compile time.
type registry struct {
	bodies [BodyCount]Body
	n      int
}

func (r *registry) add(b Body) {
	demand(r.n < BodyCount, "body registry overflow registering %q", b.Name)
	r.bodies[r.n] = b
	r.n++
}

// demand panics when an invariant of the model does not hold. These are
// programming errors, not runtime conditions.
func demand(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("orrery: "+format, args...))
	}
}
