package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orrery/internal/analysis"
	"github.com/san-kum/orrery/internal/automation"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/experiment"
	"github.com/san-kum/orrery/internal/export"
	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/metrics"
	"github.com/san-kum/orrery/internal/orrery"
	"github.com/san-kum/orrery/internal/spatial"
	"github.com/san-kum/orrery/internal/storage"
	"github.com/san-kum/orrery/internal/viz"
)

var (
	dataDir      string
	resourceDirs []string
	configFile   string
	preset       string
	verbose      bool

	dt         float64
	duration   float64
	integrator string
	adaptive   bool
	tolerance  float64
	frameRate  int

	metricsAddr string
	outPath     string
	integrators []string

	snapshotAt   float64
	snapshotMode string
	svgPath      string
	sweepMin     float64
	sweepMax     float64
	sweepPoints  int
	trials       int
	perturbation float64
	seed         int64
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	rootCmd := &cobra.Command{
		Use:   "orrery",
		Short: "kinematic orrery simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringSliceVar(&resourceDirs, "resources", nil, "mesh search directories")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	simFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	simFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	liveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body angles of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare integrators on the same orrery",
		Args:  cobra.NoArgs,
		RunE:  compareIntegrators,
	}
	simFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&integrators, "with", []string{"euler", "rk4", "rk45", "verlet"}, "integrators to compare")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tINTEG\tDT\tDURATION\tADAPTIVE")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.4fs\t%.0fs\t%v\n", name, p.Integrator, p.Dt, p.Duration, p.Adaptive)
			}
			return w.Flush()
		},
	}

	topologyCmd := &cobra.Command{
		Use:   "topology",
		Short: "print the frame hierarchy",
		Args:  cobra.NoArgs,
		RunE:  printTopology,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "measure revolution periods of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render the orrery or its orbits to SVG",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	simFlags(snapshotCmd)
	snapshotCmd.Flags().Float64Var(&snapshotAt, "at", 0, "simulation time to render (scene mode)")
	snapshotCmd.Flags().StringVar(&snapshotMode, "mode", "scene", "scene or tracks")
	snapshotCmd.Flags().StringVarP(&svgPath, "out", "o", "orrery.svg", "output file")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run and store every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "phase error across a range of timesteps",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	simFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "dt-min", 0.001, "smallest timestep")
	sweepCmd.Flags().Float64Var(&sweepMax, "dt-max", 0.1, "largest timestep")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of timesteps")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run perturbed initial angles in parallel",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	simFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 32, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 0.5, "max initial angle perturbation (rad)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 for time based")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportJSONCmd, compareCmd, presetsCmd, topologyCmd,
		analyzeCmd, snapshotCmd, scenarioCmd, sweepCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func simFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive stepping")
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive error tolerance")
}

// loadConfig layers the preset, the config file and explicitly set flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("adaptive") {
		cfg.Adaptive = adaptive
	}
	if flags.Changed("tol") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if len(resourceDirs) > 0 {
		cfg.ResourceDirs = resourceDirs
	}

	return cfg, cfg.Validate()
}

func newExperiment(cmd *cobra.Command) (*experiment.Experiment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return experiment.New(cfg, experiment.WithLogger(logger))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd)
	if err != nil {
		return err
	}
	cfg := exp.Config()

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running orrery with %s for %gs...\n", cfg.Integrator, cfg.Duration)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(exp.RunInfo(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d", result.StepsTaken)
	if result.Rejected > 0 {
		fmt.Printf(" (%d rejected)", result.Rejected)
	}
	fmt.Println()

	final := result.Final()
	fmt.Println("\nfinal angles:")
	for i, name := range exp.Orrery().BodyNames() {
		fmt.Printf("  %-7s %10.4f rad\n", name, orrery.Angles(final)[i])
	}

	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd)
	if err != nil {
		return err
	}

	exporter := metrics.NewExporter(exp.Orrery().BodyNames())
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: exporter.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "addr", metricsAddr, "err", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		logger.Info("serving metrics", "addr", metricsAddr)
	}

	return viz.Run(exp, exporter)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tINTEG\tSTEPS")

	for _, run := range runs {
		integ := run.Integrator
		if run.Adaptive {
			integ += "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			integ,
			run.Steps,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("integrator: %s\n", meta.Integrator)
	fmt.Printf("samples: %d\n\n", len(states))

	for i, name := range meta.Bodies {
		data := make([]float64, len(states))
		for j := range states {
			if i < len(states[j]) {
				data[j] = states[j][i]
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(strings.ToLower(name)+" angle (rad)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	info, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(outPath, info, result); err != nil {
		return err
	}
	if outPath != "-" {
		fmt.Printf("exported %s to %s\n", args[0], outPath)
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tSTEPS\tPHASE ERR\tRATE DRIFT\tTIME")

	for _, name := range integrators {
		cfg := *base
		cfg.Integrator = name
		exp, err := experiment.New(&cfg, experiment.WithLogger(logger))
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%v\n",
			name,
			result.StepsTaken,
			result.Metrics["phase_error"],
			result.Metrics["rate_drift"],
			time.Since(start).Round(time.Microsecond),
		)
	}
	return w.Flush()
}

func printTopology(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	scene := geometry.NewScene(geometry.WithLogger(logger))
	o, err := orrery.NewFloat64(scene, orrery.WithLogger(logger), orrery.WithResourceDirs(cfg.ResourceDirs...))
	if err != nil {
		return err
	}

	fmt.Printf("source %v: %d frames, %d geometries\n\n", o.Source(), scene.NumFrames(), scene.NumGeometries())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tBODY\tPARENT\tAXIS\tOFFSET\tPERIOD")
	for i, b := range o.Bodies() {
		parent := "world"
		if b.Parent != geometry.WorldFrame {
			parent = scene.FrameName(b.Parent)
		}
		p := spatial.ToR3(b.Offset.P)
		fmt.Fprintf(w, "%v\t%s\t%s\t(%.3f, %.3f, %.3f)\t(%.2f, %.2f, %.2f)\t%gs\n",
			b.Frame, b.Name, parent,
			b.Axis.X, b.Axis.Y, b.Axis.Z,
			p.X, p.Y, p.Z,
			orrery.Period(i),
		)
	}
	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	periods, err := analysis.Periods(states, times, meta.Bodies)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tMEASURED\tEXPECTED\tERROR")
	for _, p := range periods {
		fmt.Fprintf(w, "%s\t%.4fs\t%.4fs\t%.2f%%\n", p.Body, p.Measured, p.Expected, 100*math.Abs(p.Measured-p.Expected)/p.Expected)
	}
	return w.Flush()
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if snapshotMode == "scene" {
		if snapshotAt <= 0 {
			snapshotAt = cfg.Dt
		}
		cfg.Duration = snapshotAt
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	theme := viz.Themes[0]
	var svg string
	switch snapshotMode {
	case "scene":
		o := exp.Orrery()
		ids, poses := o.AllocateFrameIDs(), o.AllocateFramePoses()
		o.CalcFramePoses(result.Final(), &poses)
		if err := exp.Scene().Apply(ids, poses); err != nil {
			return err
		}
		canvas := viz.NewCanvas(80, 40)
		viz.DrawScene(canvas, viz.NewCamera(), exp.Scene().GeometryPoses())
		svg = export.CanvasToSVG(canvas, 4, theme)
	case "tracks":
		states := make([][]float64, len(result.States))
		for i, x := range result.States {
			states[i] = x
		}
		tracks, err := export.BodyTracks(exp.Orrery(), exp.Scene(), states)
		if err != nil {
			return err
		}
		svg = export.TracksToSVG(tracks, 800, 800, theme)
	default:
		return fmt.Errorf("unknown snapshot mode: %s (want scene or tracks)", snapshotMode)
	}

	if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgPath)
	return nil
}

func newRunner() *automation.Runner {
	return &automation.Runner{ResourceDirs: resourceDirs, Logger: logger}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := newRunner().RunScenario(cmd.Context(), sc)
	for _, r := range results {
		runID, saveErr := st.Save(r.Experiment.RunInfo(), r.Result)
		if saveErr != nil {
			return saveErr
		}
		fmt.Printf("%-12s %s  steps=%d  phase_error=%.3e\n", r.Name, runID, r.Result.StepsTaken, r.Result.Metrics["phase_error"])
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := newRunner().RunSweep(cmd.Context(), automation.DtSweep{
		Integrator: cfg.Integrator,
		DtMin:      sweepMin,
		DtMax:      sweepMax,
		NumSteps:   sweepPoints,
		Duration:   cfg.Duration,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tPHASE ERR\tRATE DRIFT")
	errs := make([]float64, 0, len(results))
	for _, r := range results {
		fmt.Fprintf(w, "%.5f\t%d\t%.3e\t%.3e\n", r.Dt, r.Steps, r.PhaseError, r.RateDrift)
		errs = append(errs, r.PhaseError)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(errs) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(errs, asciigraph.Height(8), asciigraph.Caption("phase error by dt")))
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := newRunner().RunMonteCarlo(cmd.Context(), automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         seed,
	})
	if err != nil {
		return err
	}

	ok, bad := automation.MonteCarloStats(results)
	fmt.Printf("%d trials in %v: %d consistent, %d inconsistent\n", len(results), time.Since(start).Round(time.Millisecond), ok, bad)
	return nil
}
