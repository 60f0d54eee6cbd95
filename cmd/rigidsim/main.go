package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidsim/internal/analysis"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/export"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/optim"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/viz"
	"github.com/san-kum/rigidsim/internal/world"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    int
	dt         float64
	duration   float64
	friction   float64
	broadphase string
	configFile string
	sample     int
	outFile    string
	axisName   string
	bodyIndex  int
	tuneParams []string
	tuneMetric string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rigidsim",
		Short:        "2D rigid body simulation lab",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidsim", "data directory")
	rootCmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", 0, "log verbosity (1: registry and runs, 2: every step)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run simulation and save the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&sample, "sample", config.DefaultSampleEvery, "record every n-th step")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body heights of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scene]",
		Short: "run a scene with and without friction",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareFriction,
	}
	addSceneFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark a scene across timesteps",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "oscillation frequencies and phase portrait of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&axisName, "axis", "y", "axis (x, y, angle)")
	analyzeCmd.Flags().IntVar(&bodyIndex, "body", -1, "body index for the phase portrait (default: first moving body)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export body trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scene]",
		Short: "render a scene after its duration to SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotScene,
	}
	addSceneFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search solver parameters minimizing a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneScene,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVarP(&tuneParams, "param", "p", []string{"iterations=5,10,20"}, "name=v1,v2,... ("+strings.Join(optim.Tunable, ", ")+")")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "max_penetration", "metric to minimize")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, liveCmd, presetsCmd, compareCmd, benchCmd, exportJSONCmd, analyzeCmd, exportSVGCmd, snapshotCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&friction, "friction", config.DefaultFriction, "friction coefficient")
	cmd.Flags().StringVar(&broadphase, "broadphase", config.DefaultBroadphase, "broadphase ("+strings.Join(scene.ListBroadphases(), ", ")+")")
}

func newLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbose})
}

// loadScene resolves the scene from --config or a preset name. Flags the
// user set explicitly override the loaded values.
func loadScene(cmd *cobra.Command, args []string) (string, *config.Config, error) {
	var (
		name string
		cfg  *config.Config
	)
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return "", nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = cfg.Preset
		if name == "" {
			name = "custom"
		}
	case len(args) == 1:
		name = args[0]
		cfg = config.GetPreset(name)
		if cfg == nil {
			return "", nil, fmt.Errorf("unknown scene: %s (available: %v)", name, config.ListPresets())
		}
	default:
		return "", nil, fmt.Errorf("scene name or --config required")
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("friction") {
		cfg.Friction = friction
	}
	if flags.Changed("broadphase") {
		cfg.Broadphase = broadphase
	}
	if flags.Changed("sample") {
		cfg.SampleEvery = sample
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return name, cfg, nil
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		SampleEvery:   cfg.SampleEvery,
		ValidateState: true,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	w, err := scene.Build(cfg, world.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	s := sim.New(w)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}

	fmt.Printf("running %s (%d bodies, %d steps)...\n", name, len(w.Bodies()), cfg.Steps())
	result, runErr := s.Run(cmd.Context(), simConfig(cfg))
	if result == nil {
		return runErr
	}

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.WallTime)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	for _, m := range metrics.Default() {
		if v, ok := result.Metrics[m.Name()]; ok {
			fmt.Printf("  %-20s %.6f\n", m.Name(), v)
		}
	}
	for _, e := range result.Errors {
		fmt.Println(viz.Highlight.Render("error: " + e.Error()))
	}
	return runErr
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tBODIES\tBROADPHASE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			len(run.BodyIDs),
			run.Broadphase,
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

	frames, _, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(frames))

	const maxPlots = 6
	plotted := 0
	for idx := range frames[0] {
		if plotted == maxPlots {
			break
		}
		data := make([]float64, len(frames))
		for i, f := range frames {
			data[i] = f[idx].Y
		}
		if flat(data) {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("body %d height", frames[0][idx].ID)),
		)
		fmt.Println(graph)
		fmt.Println()
		plotted++
	}

	if plotted == 0 {
		fmt.Println(viz.Subtle.Render("no moving bodies"))
	}
	return nil
}

func flat(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}

func runLive(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	build := func() (*world.World, error) {
		return scene.Build(cfg)
	}
	model, err := viz.NewModel(name, build, cfg.Dt)
	if err != nil {
		return err
	}
	return viz.Run(model)
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println(viz.TableHeader.Render("scenes:"))
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Printf("  %-14s %s\n", name, viz.Subtle.Render(fmt.Sprintf("%d bodies, %.1fs", len(cfg.Scene.Bodies), cfg.Duration)))
	}
	return nil
}

func compareFriction(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	log := newLogger()
	frictionless := *cfg
	frictionless.Friction = 0
	variants := []struct {
		label string
		cfg   *config.Config
	}{
		{fmt.Sprintf("mu=%.2f", cfg.Friction), cfg},
		{"mu=0", &frictionless},
	}

	builders := make([]sim.Builder, len(variants))
	for i, v := range variants {
		builders[i] = func() (*world.World, error) {
			return scene.Build(v.cfg, world.WithLogger(log.WithValues("variant", v.label)))
		}
	}

	results, err := sim.NewEnsemble(builders...).
		WithMetrics(metrics.Default).
		Run(cmd.Context(), simConfig(cfg))
	if err != nil {
		return err
	}

	fmt.Printf("comparing friction for %s (dt=%.4f, duration=%.1fs)\n\n", name, cfg.Dt, cfg.Duration)
	fmt.Printf("%-10s  %-12s  %-12s  %-12s  %-12s\n", "variant", "kinetic", "max_speed", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 66))
	for i, res := range results {
		fmt.Printf("%-10s  %12.4f  %12.4f  %12.2e  %12.2f\n",
			variants[i].label,
			res.Metrics["kinetic_energy"],
			res.Metrics["max_speed"],
			res.EnergyDrift,
			float64(res.WallTime.Microseconds())/1000,
		)
	}
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	dts := []float64{1.0 / 30, 1.0 / 60, 1.0 / 120, 1.0 / 240}

	fmt.Printf("benchmarking %s (%d bodies)\n\n", name, len(cfg.Scene.Bodies))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tTIME\tSTEPS/SEC\tMAX CONTACTS")

	for _, step := range dts {
		wld, err := scene.Build(cfg)
		if err != nil {
			return err
		}

		steps, contacts := 0, 0
		start := time.Now()
		err = sim.New(wld).RunWithCallback(context.Background(), sim.Config{Dt: step, Duration: cfg.Duration},
			func(cur *world.World, _ sim.Frame) bool {
				steps++
				contacts = max(contacts, len(cur.Nearphase.ContactEquations()))
				return true
			})
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%.4fs\t%d\t%v\t%.0f\t%d\n",
			step, steps, elapsed, float64(steps)/elapsed.Seconds(), contacts)
	}

	return w.Flush()
}

// writeOutput sends write's output to --out, or stdout when unset.
func writeOutput(what string, write func(io.Writer) error) error {
	if outFile == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported %s to %s\n", what, outFile)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return writeOutput(args[0], func(w io.Writer) error {
		return st.Export(args[0], w)
	})
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	frames, _, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return writeOutput(args[0], func(w io.Writer) error {
		return export.TrajectorySVG(w, frames, 800, 600)
	})
}

func snapshotScene(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	w, err := scene.Build(cfg, world.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	if _, err := sim.New(w).Run(cmd.Context(), simConfig(cfg)); err != nil {
		return err
	}

	c := viz.NewCanvas(120, 40)
	viz.DrawWorld(c, viz.FitViewport(c, w), w)
	return writeOutput(name, func(out io.Writer) error {
		_, err := io.WriteString(out, export.CanvasToSVG(c, 4))
		return err
	})
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	axis, err := analysis.ParseAxis(axisName)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, times, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) < 4 {
		return fmt.Errorf("not enough samples to analyze")
	}
	sampleDt := times[1] - times[0]

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Scene)
	fmt.Printf("samples: %d every %.4fs\n\n", len(frames), sampleDt)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "BODY\tFREQ (%s)\tPERIOD\tTREND\n", axis)
	portraitBody := bodyIndex
	for idx := range frames[0] {
		series := analysis.Series(frames, idx, axis)
		if flat(series) {
			continue
		}
		if portraitBody < 0 {
			portraitBody = idx
		}
		trend := viz.SparklineChart(series, 24)
		if f, ok := analysis.DominantFrequency(series, sampleDt); ok {
			fmt.Fprintf(w, "%d\t%.3f Hz\t%.3fs\t%s\n", frames[0][idx].ID, f, 1/f, trend)
		} else {
			fmt.Fprintf(w, "%d\t-\t-\t%s\n", frames[0][idx].ID, trend)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if portraitBody < 0 || portraitBody >= len(frames[0]) {
		fmt.Println(viz.Subtle.Render("no moving bodies"))
		return nil
	}
	fmt.Printf("\nphase portrait of body %d (%s vs d%s/dt):\n", frames[0][portraitBody].ID, axis, axis)
	fmt.Print(analysis.BodyPortrait(frames, portraitBody, axis).ASCII(60, 15))
	return nil
}

func tuneScene(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	params := make([]optim.Param, 0, len(tuneParams))
	for _, s := range tuneParams {
		p, err := optim.ParseParam(s)
		if err != nil {
			return err
		}
		params = append(params, p)
	}

	fmt.Printf("tuning %s for minimal %s\n\n", name, tuneMetric)
	best, all, err := optim.NewGridSearch(params...).
		WithLogger(newLogger()).
		Search(cmd.Context(), cfg, tuneMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(params)+1)
	for _, p := range params {
		header = append(header, strings.ToUpper(p.Name))
	}
	fmt.Fprintln(w, strings.Join(append(header, strings.ToUpper(tuneMetric)), "\t"))
	for _, c := range all {
		row := make([]string, 0, len(params)+1)
		for _, p := range params {
			row = append(row, fmt.Sprintf("%g", c.Params[p.Name]))
		}
		if c.Err != nil {
			row = append(row, "failed: "+c.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.6g", c.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Highlight.Render(fmt.Sprintf("best %s = %.6g at %v", tuneMetric, best.Value, best.Params)))
	return nil
}
