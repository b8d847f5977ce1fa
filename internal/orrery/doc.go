// Package orrery implements a fixed-topology kinematic model of a small
// mechanical solar system: a sun on a post, two planets on L-shaped arms,
// and one moon per planet.
//
// Construction registers the whole hierarchy with a [geometry.Engine] once.
// After that the model is immutable and its evaluation methods are pure
// functions of a caller-owned state snapshot:
//
//   - [Orrery.CalcTimeDerivatives]: angles integrate rates, rates are constant
//   - [Orrery.CalcFramePoses]: rotation of every body frame about its axis
//   - [Orrery.CalcFrameIDs]: nothing, the topology never changes
//
// The state layout is BodyCount angles followed by BodyCount angular rates,
// in body order Earth, Luna, Mars, Phobos. The scalar type is a type
// parameter; use [spatial.Float64] for plain simulation and [spatial.Dual]
// to differentiate poses with respect to the state.
//
// # Example
//
//	scene := geometry.NewScene()
//	o, err := orrery.NewFloat64(scene, orrery.WithResourceDirs("resources"))
//	if err != nil {
//	    return err
//	}
//	x := o.DefaultState()
//	poses := o.AllocateFramePoses()
//	o.CalcFramePoses(x, &poses)
//
// # Thread Safety
//
// Evaluation methods only read the body registry and may be called
// concurrently for different snapshots and output buffers. Construction
// must finish before the first evaluation.
package orrery
