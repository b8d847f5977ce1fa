package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/control"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/experiment"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and overrides the
// fields that are set.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	Adaptive   *bool              `yaml:"adaptive"`
	Angles     map[string]float64 `yaml:"angles"`
	Periods    map[string]float64 `yaml:"periods"`
}

// Config returns the run configuration of the step.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", config.ErrInvalid, s.Preset)
		}
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Adaptive != nil {
		cfg.Adaptive = *s.Adaptive
	}
	if len(s.Angles) > 0 {
		if cfg.InitState.Angles == nil {
			cfg.InitState.Angles = make(map[string]float64)
		}
		maps.Copy(cfg.InitState.Angles, s.Angles)
	}
	if len(s.Periods) > 0 {
		if cfg.InitState.Periods == nil {
			cfg.InitState.Periods = make(map[string]float64)
		}
		maps.Copy(cfg.InitState.Periods, s.Periods)
	}
	return cfg, cfg.Validate()
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("automation: %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// Runner executes scenarios and studies. Every run resolves meshes in
// ResourceDirs, when set.
type Runner struct {
	ResourceDirs []string
	Logger       *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

func (r *Runner) experiment(cfg *config.Config) (*experiment.Experiment, error) {
	if len(r.ResourceDirs) > 0 {
		cfg.ResourceDirs = r.ResourceDirs
	}
	return experiment.New(cfg, experiment.WithLogger(r.logger()))
}

// StepResult pairs a scenario step with its run.
type StepResult struct {
	Name       string
	Experiment *experiment.Experiment
	Result     *dynamo.Result
}

// RunScenario executes all steps in order and stops at the first failure.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		r.logger().Info("scenario step", "scenario", scenario.Name, "step", name, "n", i+1, "of", len(scenario.Steps))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %s: %w", name, err)
		}
		exp, err := r.experiment(cfg)
		if err != nil {
			return results, fmt.Errorf("step %s: %w", name, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %s run: %w", name, err)
		}

		results = append(results, StepResult{Name: name, Experiment: exp, Result: result})
	}

	return results, nil
}

// DtSweep runs one integrator at NumSteps timesteps spaced geometrically
// between DtMin and DtMax.
type DtSweep struct {
	Integrator string
	DtMin      float64
	DtMax      float64
	NumSteps   int
	Duration   float64
}

// SweepResult holds one point of a timestep sweep
type SweepResult struct {
	Dt         float64
	Steps      int
	PhaseError float64
	RateDrift  float64
}

// RunSweep measures the phase error of the integrator at every timestep.
// On this model the error is pure round-off for every method that
// integrates constant rates exactly.
func (r *Runner) RunSweep(ctx context.Context, sweep DtSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 || sweep.DtMin <= 0 || sweep.DtMax < sweep.DtMin {
		return nil, fmt.Errorf("%w: sweep needs 0 < dt_min <= dt_max and at least one step", config.ErrInvalid)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	ratio := 1.0
	if sweep.NumSteps > 1 {
		ratio = math.Pow(sweep.DtMax/sweep.DtMin, 1/float64(sweep.NumSteps-1))
	}

	for i := 0; i < sweep.NumSteps; i++ {
		cfg := config.DefaultConfig()
		cfg.Integrator = sweep.Integrator
		cfg.Dt = sweep.DtMin * math.Pow(ratio, float64(i))
		if sweep.Duration > 0 {
			cfg.Duration = sweep.Duration
		}

		exp, err := r.experiment(cfg)
		if err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			Dt:         cfg.Dt,
			Steps:      result.StepsTaken,
			PhaseError: result.Metrics["phase_error"],
			RateDrift:  result.Metrics["rate_drift"],
		})
		r.logger().Debug("sweep point", "n", i+1, "of", sweep.NumSteps, "dt", cfg.Dt)
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial angles of a base configuration.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Workers      int
	Seed         int64
}

// MonteCarloResult holds one perturbed trial
type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	// Consistent reports whether every final angle equals its initial
	// angle advanced by rate·duration to within 1e-9.
	Consistent bool
}

// RunMonteCarlo executes the trials in parallel on one shared orrery.
func (r *Runner) RunMonteCarlo(ctx context.Context, mc MonteCarloConfig) ([]MonteCarloResult, error) {
	base := *mc.Base
	exp, err := r.experiment(&base)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := exp.System().StateDim() / 2
	x0s := make([]dynamo.State, mc.NumTrials)
	for trial := range x0s {
		x := exp.InitState()
		for i := 0; i < n; i++ {
			x[i] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		}
		x0s[trial] = x
	}

	newIntegrator, err := experiment.NewRegistry().IntegratorFactory(base.Integrator)
	if err != nil {
		return nil, err
	}
	sys := exp.System()
	ens := dynamo.NewEnsemble(sys, newIntegrator, func() dynamo.Controller { return control.For(sys) })
	if mc.Workers > 0 {
		ens.SetWorkers(mc.Workers)
	}

	runs, err := ens.Run(ctx, x0s, base.Sim())
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for trial, res := range runs {
		final := res.Final()
		elapsed := res.Times[len(res.Times)-1]
		consistent := true
		for i := 0; i < n; i++ {
			want := x0s[trial][i] + x0s[trial][n+i]*elapsed
			if math.Abs(final[i]-want) > 1e-9 {
				consistent = false
				break
			}
		}
		results[trial] = MonteCarloResult{
			TrialID:    trial,
			InitState:  x0s[trial],
			FinalState: final,
			Consistent: consistent,
		}
	}
	return results, nil
}

// MonteCarloStats counts consistent and inconsistent trials.
func MonteCarloStats(results []MonteCarloResult) (consistent int, inconsistent int) {
	for _, r := range results {
		if r.Consistent {
			consistent++
		} else {
			inconsistent++
		}
	}
	return
}
