package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/masersim/internal/analysis"
	"github.com/san-kum/masersim/internal/config"
	"github.com/san-kum/masersim/internal/export"
	"github.com/san-kum/masersim/internal/lindblad"
	"github.com/san-kum/masersim/internal/maser"
	"github.com/san-kum/masersim/internal/metrics"
	"github.com/san-kum/masersim/internal/postprocess"
	"github.com/san-kum/masersim/internal/sample"
	"github.com/san-kum/masersim/internal/storage"
	"github.com/san-kum/masersim/internal/tui"
	"github.com/san-kum/masersim/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string

	dt         float64
	duration   float64
	snapshotDt float64
	integrator string
	adaptive   bool
	tolerance  float64

	nph    int
	g      float64
	kappa  float64
	gammaH float64
	gammaC float64
	tHot   float64
	tCold  float64
	tEnv   float64

	snapshotIndex int
	gridPoints    int
	gridExtent    float64
	svgFile       string
	exportFile    string
	frameRate     int

	sweepParam  string
	sweepValues string
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd := &cobra.Command{
		Use:   "masersim",
		Short: "three-level maser master-equation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".masersim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate the master equation and store the run",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot populations and photon number",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "photon statistics and second-order coherence",
		Args:  cobra.ExactArgs(1),
		RunE:  statsRun,
	}
	statsCmd.Flags().IntVar(&snapshotIndex, "snapshot", -1, "snapshot index (-1 = last, the presumed steady state)")

	qfuncCmd := &cobra.Command{
		Use:   "qfunc [run_id]",
		Short: "Husimi Q function of the cavity state",
		Args:  cobra.ExactArgs(1),
		RunE:  qfuncRun,
	}
	qfuncCmd.Flags().IntVar(&snapshotIndex, "snapshot", -1, "snapshot index (-1 = last)")
	qfuncCmd.Flags().IntVar(&gridPoints, "grid", 31, "phase-space grid points per axis")
	qfuncCmd.Flags().Float64Var(&gridExtent, "extent", 4.0, "phase-space half width")
	qfuncCmd.Flags().StringVar(&svgFile, "svg", "", "also write the grid as an SVG heat map")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id] [observable]",
		Short: "power spectrum of a recorded observable",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  spectrumRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the same configuration across a range of one parameter",
		RunE:  sweepRun,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "g", "parameter to vary (g, kappa, gamma-h, gamma-c, t-hot, t-cold)")
	sweepCmd.Flags().StringVar(&sweepValues, "values", "", "comma-separated parameter values")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and series as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			if exportFile != "" {
				return st.ExportJSONFile(args[0], exportFile)
			}
			return st.ExportJSON(args[0], os.Stdout)
		},
	}
	exportCmd.Flags().StringVar(&exportFile, "out", "", "write to file instead of stdout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list named parameter presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "stepping throughput across truncations",
		RunE:  benchRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare rk4 and rk45 on the reference run",
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "output grid spacing")
	compareCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a run in the terminal",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, statsCmd, qfuncCmd, spectrumCmd, sweepCmd, exportCmd, presetsCmd, benchCmd, compareCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "named preset")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "output grid spacing")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&snapshotDt, "dt-rho", config.DefaultSnapshotDt, "snapshot grid spacing (0 disables)")
	cmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator (rk4, rk45)")
	cmd.Flags().BoolVar(&adaptive, "adaptive", true, "adaptive substepping")
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive error tolerance")
	cmd.Flags().IntVar(&nph, "nph", 10, "cavity Fock truncation")
	cmd.Flags().Float64Var(&g, "g", 5.0, "atom-cavity coupling")
	cmd.Flags().Float64Var(&kappa, "kappa", 0.1, "cavity loss rate")
	cmd.Flags().Float64Var(&gammaH, "gamma-h", 40.0, "hot bath coupling")
	cmd.Flags().Float64Var(&gammaC, "gamma-c", 40.0, "cold bath coupling")
	cmd.Flags().Float64Var(&tHot, "t-hot", 100.0, "hot bath temperature")
	cmd.Flags().Float64Var(&tCold, "t-cold", 20.0, "cold bath temperature")
	cmd.Flags().Float64Var(&tEnv, "t-env", 0.0, "cavity environment temperature")
}

// resolveConfig layers preset, config file and changed CLI flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
	}

	flagOverrides := map[string]func(){
		"dt":         func() { cfg.Dt = dt },
		"time":       func() { cfg.Duration = duration },
		"dt-rho":     func() { cfg.SnapshotDt = snapshotDt },
		"integrator": func() { cfg.Integrator = integrator },
		"adaptive":   func() { cfg.Adaptive = adaptive },
		"tol":        func() { cfg.Tolerance = tolerance },
		"nph":        func() { cfg.Physics.Nph = nph },
		"g":          func() { cfg.Physics.G = g },
		"kappa":      func() { cfg.Physics.Kappa = kappa },
		"gamma-h":    func() { cfg.Physics.GammaH = gammaH },
		"gamma-c":    func() { cfg.Physics.GammaC = gammaC },
		"t-hot":      func() { cfg.Physics.TH = tHot },
		"t-cold":     func() { cfg.Physics.TC = tCold },
		"t-env":      func() { cfg.Physics.TEnv = tEnv },
	}
	for name, apply := range flagOverrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	return cfg, nil
}

func newStepper(name string) (lindblad.Stepper, error) {
	switch name {
	case "rk4":
		return lindblad.NewRK4(), nil
	case "rk45":
		return lindblad.NewRK45(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sys, err := maser.NewSystem(cfg.Params())
	if err != nil {
		return err
	}
	stepper, err := newStepper(cfg.Integrator)
	if err != nil {
		return err
	}
	lv, err := lindblad.NewLiouvillian(sys.H, sys.Jumps)
	if err != nil {
		return err
	}

	rec, missed, err := sample.NewRecorder(sys.Observables(), cfg.Dt, cfg.Duration, cfg.SnapshotDt, 0)
	if err != nil {
		return err
	}
	for _, t := range missed {
		log.Warn().Float64("t", t).Msg("snapshot time misses the output grid, slot stays empty")
	}

	solver := lindblad.NewSolver(lv, stepper)
	solver.AddMetric(metrics.NewTraceDrift())
	solver.AddMetric(metrics.NewHermiticityDefect())
	solver.AddMetric(metrics.NewPurity())
	solver.AddMetric(metrics.NewPhotonGain(sys.Num))

	log.Info().
		Int("dim", sys.Params.Dim()).
		Str("integrator", cfg.Integrator).
		Float64("dt", cfg.Dt).
		Float64("duration", cfg.Duration).
		Msg("integrating")

	start := time.Now()
	result, err := solver.Run(context.Background(), sys.InitialState(), lindblad.Config{
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Adaptive:  cfg.Adaptive,
		Tolerance: cfg.Tolerance,
	}, rec)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if result.Renormalized > 0 {
		log.Warn().Int("steps", result.Renormalized).Msg("trace drift exceeded tolerance, renormalized")
	}

	runID, err := st.Save(storage.RunMetadata{
		Integrator:   cfg.Integrator,
		Adaptive:     cfg.Adaptive,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		SnapshotDt:   cfg.SnapshotDt,
		Physics:      cfg.Physics,
		Metrics:      result.Metrics,
		Renormalized: result.Renormalized,
	}, rec)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("output times: %d, snapshots: %d\n", len(result.Times), len(rec.Snapshots()))
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	return nil
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
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tNPH\tINTEG\tGAIN")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.4f\t%d\t%s\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Physics.Nph,
			run.Integrator,
			run.Metrics["photon_gain"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	_, series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(series["photon_number"]))

	pops := [][]float64{series["population1"], series["population2"], series["population3"]}
	fmt.Println(viz.MultiSeries("populations p1, p2, p3", pops))
	fmt.Println()
	fmt.Println(viz.Series("photon number <a†a>", series["photon_number"]))
	fmt.Println()

	return nil
}

func pickSnapshot(snaps []sample.Snapshot) (sample.Snapshot, error) {
	if len(snaps) == 0 {
		return sample.Snapshot{}, fmt.Errorf("run has no snapshots")
	}
	idx := snapshotIndex
	if idx < 0 {
		idx = len(snaps) - 1
	}
	if idx >= len(snaps) {
		return sample.Snapshot{}, fmt.Errorf("snapshot index %d out of range (have %d)", idx, len(snaps))
	}
	return snaps[idx], nil
}

func statsRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	snaps, err := st.LoadSnapshots(args[0])
	if err != nil {
		return err
	}
	snap, err := pickSnapshot(snaps)
	if err != nil {
		return err
	}

	cav := meta.Physics.Nph + 1
	probs, err := postprocess.PhotonDistribution(snap.Rho, cav)
	if err != nil {
		return err
	}
	pops, err := postprocess.Populations(snap.Rho, cav)
	if err != nil {
		return err
	}

	n, n2 := postprocess.PhotonMoments(probs)

	fmt.Printf("run: %s, snapshot at t=%.2f\n\n", meta.ID, snap.T)
	fmt.Printf("populations: p1=%.4f p2=%.4f p3=%.4f\n", pops[0], pops[1], pops[2])
	fmt.Printf("<a†a> = %.4f, g2(0) = %.4f\n", n, postprocess.SecondOrderCoherence(n, n2))
	fmt.Println("\nphoton number distribution:")
	fmt.Print(viz.Histogram(probs))

	return nil
}

func qfuncRun(cmd *cobra.Command, args []string) error {
	if gridPoints < 2 {
		return fmt.Errorf("grid must have at least 2 points per axis")
	}

	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	snaps, err := st.LoadSnapshots(args[0])
	if err != nil {
		return err
	}
	snap, err := pickSnapshot(snaps)
	if err != nil {
		return err
	}

	grid, err := postprocess.HusimiQ(snap.Rho, meta.Physics.Nph+1, gridPoints, gridExtent)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s, Q function at t=%.2f\n\n", meta.ID, snap.T)
	fmt.Print(viz.Heatmap(grid))

	if svgFile != "" {
		if err := export.WriteHusimiSVG(grid, 8, svgFile); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgFile)
	}

	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	name := "photon_number"
	if len(args) > 1 {
		name = args[1]
	}

	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	values, ok := series[name]
	if !ok {
		return fmt.Errorf("run has no observable %q", name)
	}

	spec, err := analysis.PowerSpectrum(values, meta.Dt)
	if err != nil {
		return err
	}

	peak, power := spec.Peak()
	fmt.Printf("run: %s, observable: %s\n", meta.ID, name)
	fmt.Printf("dominant frequency: %.4f (power %.4g)\n\n", peak, power)
	fmt.Println(viz.Series("power spectrum", spec.Power))

	return nil
}

func sweepRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if sweepValues == "" {
		return fmt.Errorf("no sweep values given, use --values")
	}

	var values []float64
	for _, s := range strings.Split(sweepValues, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("bad sweep value %q: %w", s, err)
		}
		values = append(values, v)
	}

	apply, ok := map[string]func(p *maser.Params, v float64){
		"g":       func(p *maser.Params, v float64) { p.G = v },
		"kappa":   func(p *maser.Params, v float64) { p.Kappa = v },
		"gamma-h": func(p *maser.Params, v float64) { p.GammaH = v },
		"gamma-c": func(p *maser.Params, v float64) { p.GammaC = v },
		"t-hot":   func(p *maser.Params, v float64) { p.TH = v },
		"t-cold":  func(p *maser.Params, v float64) { p.TC = v },
	}[sweepParam]
	if !ok {
		return fmt.Errorf("unknown sweep parameter: %s", sweepParam)
	}

	runs := make([]lindblad.SweepRun, len(values))
	for i, v := range values {
		p := cfg.Params()
		apply(&p, v)
		sys, err := maser.NewSystem(p)
		if err != nil {
			return fmt.Errorf("%s=%g: %w", sweepParam, v, err)
		}
		lv, err := lindblad.NewLiouvillian(sys.H, sys.Jumps)
		if err != nil {
			return err
		}

		runs[i] = lindblad.SweepRun{
			Label: fmt.Sprintf("%s=%g", sweepParam, v),
			Dyn:   lv,
			Rho0:  sys.InitialState(),
			Metrics: []lindblad.Metric{
				metrics.NewPhotonGain(sys.Num),
				metrics.NewPurity(),
				metrics.NewTraceDrift(),
			},
		}
	}

	log.Info().
		Str("param", sweepParam).
		Int("runs", len(runs)).
		Float64("duration", cfg.Duration).
		Msg("sweeping")

	if _, err := newStepper(cfg.Integrator); err != nil {
		return err
	}
	newStep := func() lindblad.Stepper {
		s, _ := newStepper(cfg.Integrator)
		return s
	}

	start := time.Now()
	results, err := lindblad.RunSweep(context.Background(), runs, newStep, lindblad.Config{
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Adaptive:  cfg.Adaptive,
		Tolerance: cfg.Tolerance,
	})
	if err != nil {
		return err
	}

	fmt.Printf("swept %d runs in %v\n\n", len(runs), time.Since(start))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tPHOTON GAIN\tPURITY\tTRACE DRIFT\tSTEPS")
	for i, r := range results {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.3g\t%d\n",
			runs[i].Label,
			r.Metrics["photon_gain"],
			r.Metrics["purity"],
			r.Metrics["trace_drift"],
			r.StepsTaken)
	}
	return w.Flush()
}

func benchRun(cmd *cobra.Command, args []string) error {
	truncations := []int{5, 10, 20}
	benchDuration := 2.0
	benchDt := 0.1

	fmt.Println("benchmarking rk4 stepping")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NPH\tDIM\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range truncations {
		p := maser.Reference()
		p.Nph = n
		sys, err := maser.NewSystem(p)
		if err != nil {
			return err
		}
		lv, err := lindblad.NewLiouvillian(sys.H, sys.Jumps)
		if err != nil {
			return err
		}

		solver := lindblad.NewSolver(lv, lindblad.NewRK4())
		start := time.Now()
		result, err := solver.Run(context.Background(), sys.InitialState(), lindblad.Config{
			Dt:       benchDt,
			Duration: benchDuration,
		}, nil)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n",
			n, p.Dim(), result.StepsTaken, elapsed,
			float64(result.StepsTaken)/elapsed.Seconds())
	}

	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	sys, err := maser.NewSystem(maser.Reference())
	if err != nil {
		return err
	}
	lv, err := lindblad.NewLiouvillian(sys.H, sys.Jumps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tADAPTIVE\tTRACE DRIFT\tHERM DEFECT\tTIME")

	cases := []struct {
		name     string
		stepper  lindblad.Stepper
		adaptive bool
	}{
		{"rk4", lindblad.NewRK4(), false},
		{"rk45", lindblad.NewRK45(), true},
	}

	for _, c := range cases {
		solver := lindblad.NewSolver(lv, c.stepper)
		drift := metrics.NewTraceDrift()
		herm := metrics.NewHermiticityDefect()
		solver.AddMetric(drift)
		solver.AddMetric(herm)

		start := time.Now()
		_, err := solver.Run(context.Background(), sys.InitialState(), lindblad.Config{
			Dt:        dt,
			Duration:  duration,
			Adaptive:  c.adaptive,
			Tolerance: config.DefaultTolerance,
		}, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%v\t%.3g\t%.3g\t%v\n",
			c.name, c.adaptive, drift.Value(), herm.Value(), time.Since(start))
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sys, err := maser.NewSystem(cfg.Params())
	if err != nil {
		return err
	}
	stepper, err := newStepper(cfg.Integrator)
	if err != nil {
		return err
	}
	return tui.Run(sys, stepper, cfg.Dt, cfg.Duration, frameRate)
}
