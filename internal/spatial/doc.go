// Package spatial provides rigid-body transforms that are generic over the
// scalar type.
//
// Registration-time geometry is always expressed in float64 using gonum's
// [r3.Vec]. Time-varying poses are computed in whatever scalar the host runs
// the model with, selected by an [Arithmetic] implementation:
//
//   - [Float64]: plain float64
//   - [Dual]: gonum dual numbers, for forward-mode derivatives of a pose
//     with respect to the state
//
// # Example
//
//	R := spatial.AxisAngle[float64](spatial.Float64{}, math.Pi/2, r3.Vec{Z: 1})
//	ok := spatial.IsProperRotation(R, 1e-12)
package spatial
