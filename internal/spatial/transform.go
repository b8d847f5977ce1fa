package spatial

import "gonum.org/v1/gonum/spatial/r3"

type Vec3[T any] [3]T

// Mat3 is a row-major 3×3 matrix.
type Mat3[T any] [3][3]T

// Transform is a rigid transform X = (R, P) mapping points of a child frame
// into its parent: p_parent = R·p_child + P.
type Transform[T any] struct {
	R Mat3[T]
	P Vec3[T]
}

func IdentityMat[T any](ops Arithmetic[T]) Mat3[T] {
	var m Mat3[T]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				m[i][j] = ops.Const(1)
			} else {
				m[i][j] = ops.Const(0)
			}
		}
	}
	return m
}

// AxisAngle returns the rotation by angle about a unit axis (Rodrigues):
//
//	R = cos·I + sin·[k]× + (1 − cos)·k·kᵀ
func AxisAngle[T any](ops Arithmetic[T], angle T, axis r3.Vec) Mat3[T] {
	s, c := ops.Sincos(angle)
	t := ops.Add(ops.Const(1), ops.Mul(ops.Const(-1), c))
	k := [3]float64{axis.X, axis.Y, axis.Z}
	skew := [3][3]float64{
		{0, -axis.Z, axis.Y},
		{axis.Z, 0, -axis.X},
		{-axis.Y, axis.X, 0},
	}

	var m Mat3[T]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := ops.Add(ops.Mul(t, ops.Const(k[i]*k[j])), ops.Mul(s, ops.Const(skew[i][j])))
			if i == j {
				v = ops.Add(v, c)
			}
			m[i][j] = v
		}
	}
	return m
}

// Lift converts a float64 transform into the scalar type of ops.
func Lift[T any](ops Arithmetic[T], x Transform[float64]) Transform[T] {
	var out Transform[T]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.R[i][j] = ops.Const(x.R[i][j])
		}
		out.P[i] = ops.Const(x.P[i])
	}
	return out
}

// Real drops any derivative information and returns the float64 value of x.
func Real[T any](ops Arithmetic[T], x Transform[T]) Transform[float64] {
	var out Transform[float64]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.R[i][j] = ops.Real(x.R[i][j])
		}
		out.P[i] = ops.Real(x.P[i])
	}
	return out
}
