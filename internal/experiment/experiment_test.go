package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/control"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/geometry"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Dt = 0.01
	cfg.Duration = 12.5
	cfg.ResourceDirs = []string{"../../resources"}
	return cfg
}

func TestExperimentRun(t *testing.T) {
	exp, err := New(testConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.StepsTaken != 1250 {
		t.Errorf("expected 1250 steps, got %d", res.StepsTaken)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected run errors: %v", res.Errors)
	}

	// Earth turns every 5 s, Luna every second.
	if got := res.Metrics["revolutions_earth"]; got != 2 {
		t.Errorf("expected 2 earth revolutions, got %v", got)
	}
	if got := res.Metrics["revolutions_luna"]; got != 12 {
		t.Errorf("expected 12 luna revolutions, got %v", got)
	}
	if got := res.Metrics["phase_error"]; got > 1e-9 {
		t.Errorf("phase error too large: %g", got)
	}
	if got := res.Metrics["rate_drift"]; got != 0 {
		t.Errorf("rates drifted by %g", got)
	}
}

func TestExperimentInitState(t *testing.T) {
	cfg := testConfig()
	cfg.InitState.Angles = map[string]float64{"mars": 1}
	cfg.InitState.Periods = map[string]float64{"Phobos": 2}

	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	x := exp.InitState()
	if x[2] != 1 {
		t.Errorf("expected mars angle 1, got %v", x[2])
	}
	if math.Abs(x[7]-math.Pi) > 1e-15 {
		t.Errorf("expected phobos rate π, got %v", x[7])
	}

	x[0] = 99
	if exp.InitState()[0] == 99 {
		t.Error("InitState must return a copy")
	}
}

func TestExperimentErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Integrator = "midpoint"
	if _, err := New(cfg); !errors.Is(err, ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}

	cfg = testConfig()
	cfg.InitState.Angles = map[string]float64{"pluto": 1}
	if _, err := New(cfg); !errors.Is(err, config.ErrUnknownBody) {
		t.Errorf("expected ErrUnknownBody, got %v", err)
	}

	cfg = testConfig()
	cfg.ResourceDirs = []string{t.TempDir()}
	if _, err := New(cfg); !errors.Is(err, geometry.ErrResourceNotFound) {
		t.Errorf("expected ErrResourceNotFound, got %v", err)
	}

	cfg = testConfig()
	cfg.Dt = 0
	if _, err := New(cfg); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestExperimentAdaptive(t *testing.T) {
	cfg := config.GetPreset("precise")
	cfg.Duration = 5
	cfg.ResourceDirs = []string{"../../resources"}

	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := res.Times[len(res.Times)-1]; math.Abs(got-5) > 1e-6 {
		t.Errorf("expected to stop at t=5, got %v", got)
	}
}

func TestExperimentObserver(t *testing.T) {
	exp, err := New(testConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	calls := 0
	exp.AddObserver(observerFunc(func(dynamo.State, dynamo.Control, float64) { calls++ }))
	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 1250 {
		t.Errorf("expected 1250 observer calls, got %d", calls)
	}
}

type observerFunc func(dynamo.State, dynamo.Control, float64)

func (f observerFunc) OnStep(x dynamo.State, u dynamo.Control, t float64) { f(x, u, t) }

func TestRunInfo(t *testing.T) {
	exp, err := New(testConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	info := exp.RunInfo()
	if info.Integrator != "rk4" || len(info.Bodies) != 4 || info.Bodies[3] != "Phobos" {
		t.Errorf("unexpected run info %+v", info)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	want := []string{"euler", "leapfrog", "rk4", "rk45", "verlet"}
	got := r.ListIntegrators()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}

	if _, err := r.GetIntegrator("RK4"); err != nil {
		t.Errorf("lookup should ignore case: %v", err)
	}

	newInteg, err := r.IntegratorFactory("rk4")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if newInteg() == newInteg() {
		t.Error("factory must return a fresh integrator per call")
	}
}

func TestEnsembleAcrossInitialAngles(t *testing.T) {
	exp, err := New(testConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	newInteg, _ := NewRegistry().IntegratorFactory("rk4")
	sys := exp.System()
	e := dynamo.NewEnsemble(sys, newInteg, func() dynamo.Controller { return control.For(sys) })

	x0s := make([]dynamo.State, 4)
	for i := range x0s {
		x := exp.InitState()
		x[0] = float64(i)
		x0s[i] = x
	}
	cfg := exp.Config().Sim()
	cfg.Duration = 1

	results, err := e.Run(context.Background(), x0s, cfg)
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	rate := x0s[0][4]
	for i, res := range results {
		want := float64(i) + rate
		if got := res.Final()[0]; math.Abs(got-want) > 1e-9 {
			t.Errorf("run %d: expected earth at %v, got %v", i, want, got)
		}
	}
}
