package spatial

import (
	"math"

	"gonum.org/v1/gonum/num/dual"
)

// Arithmetic is the small set of operations the kinematics need from a
// scalar type. Implementations are stateless and safe for concurrent use.
type Arithmetic[T any] interface {
	Const(v float64) T
	Add(a, b T) T
	Mul(a, b T) T
	Sincos(a T) (sin, cos T)
	Real(a T) float64
}

// Float64 is the Arithmetic of plain float64 values.
type Float64 struct{}

func (Float64) Const(v float64) float64             { return v }
func (Float64) Add(a, b float64) float64            { return a + b }
func (Float64) Mul(a, b float64) float64            { return a * b }
func (Float64) Sincos(a float64) (float64, float64) { return math.Sincos(a) }
func (Float64) Real(a float64) float64              { return a }

// Dual is the Arithmetic of dual numbers. The Emag part of every result
// carries the derivative with respect to whatever input was seeded with
// Emag = 1.
type Dual struct{}

func (Dual) Const(v float64) dual.Number      { return dual.Number{Real: v} }
func (Dual) Add(a, b dual.Number) dual.Number { return dual.Add(a, b) }
func (Dual) Mul(a, b dual.Number) dual.Number { return dual.Mul(a, b) }
func (Dual) Real(a dual.Number) float64       { return a.Real }
func (Dual) Sincos(a dual.Number) (dual.Number, dual.Number) {
	return dual.Sin(a), dual.Cos(a)
}

// Seed returns x as dual numbers with the derivative part of index i set
// to one, so results carry d/dx[i].
func Seed(x []float64, i int) []dual.Number {
	out := make([]dual.Number, len(x))
	for j, v := range x {
		out[j] = dual.Number{Real: v}
	}
	if i >= 0 && i < len(out) {
		out[i].Emag = 1
	}
	return out
}
