package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/orrery/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int   { return 2 }
func (h *harmonicOscillator) ControlDim() int { return 0 }

func (h *harmonicOscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// spinner is two angles turning at constant rates, laid out as angles
// then rates.
type spinner struct{}

func (s *spinner) StateDim() int   { return 4 }
func (s *spinner) ControlDim() int { return 0 }

func (s *spinner) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[2], x[3], 0, 0}
}

func TestConstantRate_AllMethods(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
	}{
		{"euler", NewEuler()},
		{"rk4", NewRK4()},
		{"rk45", NewRK45()},
		{"verlet", NewVerlet()},
		{"leapfrog", NewLeapfrog()},
	}

	x0 := dynamo.State{0, math.Pi / 2, 2 * math.Pi / 5, 2 * math.Pi / 1.1}
	dt := 0.01
	steps := 500

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := x0.Clone()
			for i := 0; i < steps; i++ {
				x = tt.integ.Step(&spinner{}, x, nil, float64(i)*dt, dt)
			}
			tEnd := float64(steps) * dt
			for j := 0; j < 2; j++ {
				want := x0[j] + x0[2+j]*tEnd
				if math.Abs(x[j]-want) > 1e-9 {
					t.Errorf("angle %d = %.12f, want %.12f", j, x[j], want)
				}
				if x[2+j] != x0[2+j] {
					t.Errorf("rate %d changed: %v -> %v", j, x0[2+j], x[2+j])
				}
			}
		})
	}
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	u := dynamo.Control{}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4_ResizesScratch(t *testing.T) {
	integ := NewRK4()
	_ = integ.Step(&harmonicOscillator{}, dynamo.State{1, 0}, nil, 0, 0.01)
	x := integ.Step(&spinner{}, dynamo.State{0, 0, 1, 1}, nil, 0, 0.5)
	if len(x) != 4 || math.Abs(x[0]-0.5) > 1e-12 {
		t.Errorf("unexpected state after resize: %v", x)
	}
}

func TestRK45_Step(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.01

	for i := 0; i < 1000; i++ {
		x = integrator.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.Energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	finalEnergy := dyn.Energy(x)
	drift := math.Abs(finalEnergy-initialEnergy) / initialEnergy

	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_AdaptiveRejects(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	x, next, err := integrator.StepAdaptive(dyn, x0, nil, 0, 1.0, 1e-12)
	if !errors.Is(err, dynamo.ErrStepRejected) {
		t.Fatalf("expected ErrStepRejected, got %v", err)
	}
	if next >= 1.0 || next <= 0 {
		t.Errorf("rejected step should shrink dt, got %v", next)
	}
	if x[0] != x0[0] || x[1] != x0[1] {
		t.Errorf("rejected step changed the state: %v", x)
	}
}

func TestRK45_AdaptiveAccepts(t *testing.T) {
	integrator := NewRK45()

	x, next, err := integrator.StepAdaptive(&spinner{}, dynamo.State{0, 0, 1, 2}, nil, 0, 0.1, 1e-8)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if math.Abs(x[0]-0.1) > 1e-12 || math.Abs(x[1]-0.2) > 1e-12 {
		t.Errorf("unexpected state %v", x)
	}
	if next <= 0.1 {
		t.Errorf("exact step should grow dt, got %v", next)
	}
}
