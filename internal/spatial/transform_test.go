package spatial

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAxisAngle_ProperRotation(t *testing.T) {
	axes := []r3.Vec{
		{Z: 1},
		r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1}),
		r3.Unit(r3.Vec{Y: 0.1, Z: 1}),
		{Z: -1},
	}
	angles := []float64{0, 0.3, math.Pi / 2, math.Pi, 4.2, -7.5, 100}

	for _, axis := range axes {
		for _, a := range angles {
			R := AxisAngle[float64](Float64{}, a, axis)
			if !IsProperRotation(R, 1e-12) {
				t.Errorf("axis %v angle %v: not a proper rotation: %v", axis, a, R)
			}
		}
	}
}

func TestAxisAngle_MatchesGonumRotate(t *testing.T) {
	axis := r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1})
	p := r3.Vec{X: 0.3, Y: -1.2, Z: 2}

	for _, a := range []float64{0.1, 1, 2.5, -3} {
		got := ToR3Mat(AxisAngle[float64](Float64{}, a, axis)).MulVec(p)
		want := r3.Rotate(p, a, axis)
		if r3.Norm(r3.Sub(got, want)) > 1e-12 {
			t.Errorf("angle %v: got %v, want %v", a, got, want)
		}
	}
}

func TestAxisAngle_Periodic(t *testing.T) {
	axis := r3.Unit(r3.Vec{Y: 0.1, Z: 1})
	for _, a := range []float64{0, 0.7, math.Pi / 2} {
		R0 := AxisAngle[float64](Float64{}, a, axis)
		R1 := AxisAngle[float64](Float64{}, a+2*math.Pi, axis)
		if d := MaxAbsDiff(R0, R1); d > 1e-12 {
			t.Errorf("angle %v: rotation after one revolution differs by %e", a, d)
		}
	}
}

func TestAxisAngle_DualDerivative(t *testing.T) {
	// dR/dθ = [k]× · R
	axis := r3.Vec{Z: 1}
	theta := 0.4
	x := Seed([]float64{theta}, 0)

	R := AxisAngle(Dual{}, x[0], axis)

	want := [3][3]float64{
		{-math.Sin(theta), -math.Cos(theta), 0},
		{math.Cos(theta), -math.Sin(theta), 0},
		{0, 0, 0},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(R[i][j].Emag-want[i][j]) > 1e-12 {
				t.Errorf("dR[%d][%d] = %v, want %v", i, j, R[i][j].Emag, want[i][j])
			}
		}
	}
	if math.Abs(R[0][0].Real-math.Cos(theta)) > 1e-12 {
		t.Errorf("R[0][0] = %v, want %v", R[0][0].Real, math.Cos(theta))
	}
}

func TestCompose(t *testing.T) {
	a := Pose(math.Pi/2, r3.Vec{Z: 1}, r3.Vec{X: 1})
	b := Translation(r3.Vec{X: 2})

	ab := Compose(a, b)
	got := ToR3(ab.P)
	want := r3.Vec{X: 1, Y: 2}
	if r3.Norm(r3.Sub(got, want)) > 1e-12 {
		t.Errorf("Compose translation = %v, want %v", got, want)
	}

	p := Apply(ab, r3.Vec{X: 1})
	if r3.Norm(r3.Sub(p, r3.Vec{X: 1, Y: 3})) > 1e-12 {
		t.Errorf("Apply = %v", p)
	}
}

func TestLiftReal_RoundTrip(t *testing.T) {
	x := Pose(0.8, r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 4, Y: 5, Z: 6})
	back := Real[dual.Number](Dual{}, Lift[dual.Number](Dual{}, x))
	if back != x {
		t.Errorf("Real(Lift(x)) = %v, want %v", back, x)
	}
}

func TestIsProperRotation_Rejects(t *testing.T) {
	reflect := Mat3[float64]{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}}
	if IsProperRotation(reflect, 1e-9) {
		t.Error("reflection accepted as proper rotation")
	}
	scaled := Mat3[float64]{{2, 0, 0}, {0, 0.5, 0}, {0, 0, 1}}
	if IsProperRotation(scaled, 1e-9) {
		t.Error("non-orthogonal matrix accepted")
	}
}
