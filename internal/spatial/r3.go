package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Identity returns the identity transform.
func Identity() Transform[float64] {
	return Transform[float64]{R: IdentityMat[float64](Float64{})}
}

// Translation returns a pure translation by p.
func Translation(p r3.Vec) Transform[float64] {
	x := Identity()
	x.P = FromR3(p)
	return x
}

// Rotation returns a pure rotation by angle about axis. The axis does not
// need to be normalized.
func Rotation(angle float64, axis r3.Vec) Transform[float64] {
	return Transform[float64]{R: AxisAngle[float64](Float64{}, angle, r3.Unit(axis))}
}

// Pose returns the transform that rotates by angle about axis and then
// translates by p.
func Pose(angle float64, axis r3.Vec, p r3.Vec) Transform[float64] {
	x := Rotation(angle, axis)
	x.P = FromR3(p)
	return x
}

func FromR3(v r3.Vec) Vec3[float64] { return Vec3[float64]{v.X, v.Y, v.Z} }
func ToR3(v Vec3[float64]) r3.Vec   { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

// ToR3Mat copies m into a gonum 3×3 matrix.
func ToR3Mat(m Mat3[float64]) *r3.Mat {
	return r3.NewMat([]float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

func fromR3Mat(m *r3.Mat) Mat3[float64] {
	var out Mat3[float64]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// Compose returns a·b, the transform of b's child expressed in a's parent.
func Compose(a, b Transform[float64]) Transform[float64] {
	ra := ToR3Mat(a.R)
	var r r3.Mat
	r.Mul(ra, ToR3Mat(b.R))
	p := r3.Add(ra.MulVec(ToR3(b.P)), ToR3(a.P))
	return Transform[float64]{R: fromR3Mat(&r), P: FromR3(p)}
}

// Apply maps a point expressed in x's child frame into its parent.
func Apply(x Transform[float64], p r3.Vec) r3.Vec {
	return r3.Add(ToR3Mat(x.R).MulVec(p), ToR3(x.P))
}

// IsProperRotation reports whether det(m) ≈ 1 and m·mᵀ ≈ I within tol.
func IsProperRotation(m Mat3[float64], tol float64) bool {
	g := ToR3Mat(m)
	if math.Abs(g.Det()-1) > tol {
		return false
	}
	var rrt r3.Mat
	rrt.Mul(g, g.T())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(rrt.At(i, j)-want) > tol {
				return false
			}
		}
	}
	return true
}

// MaxAbsDiff returns the largest elementwise difference between a and b.
func MaxAbsDiff(a, b Mat3[float64]) float64 {
	d := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d = math.Max(d, math.Abs(a[i][j]-b[i][j]))
		}
	}
	return d
}
