package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/opendyn/internal/config"
	"github.com/san-kum/opendyn/internal/experiment"
	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/report"
	"github.com/san-kum/opendyn/internal/sim"
	"github.com/san-kum/opendyn/internal/storage"
	"github.com/san-kum/opendyn/internal/tui"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	tolerance  float64
	adaptive   bool
	beta       float64
	gamma      float64
	delta      float64
	s0         float64
	i0         float64
	r0         float64
	stages     int
	seed       int64
	integrator string
	configFile string
	preset     string
	frameRate  int
	runs       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "opendyn",
		Short: "compositional epidemic simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".opendyn", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run simulation with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "run a stochastic ensemble and summarize the spread",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	addModelFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 20, "ensemble size")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, presetsCmd, liveCmd, ensembleCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1e-8, "adaptive error tolerance")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive step control")
	cmd.Flags().Float64Var(&beta, "beta", config.DefaultBeta, "transmission rate")
	cmd.Flags().Float64Var(&gamma, "gamma", config.DefaultGamma, "recovery rate")
	cmd.Flags().Float64Var(&delta, "delta", config.DefaultDelta, "vital/progression rate")
	cmd.Flags().Float64Var(&s0, "s0", config.DefaultS, "initial susceptible")
	cmd.Flags().Float64Var(&i0, "i0", config.DefaultI, "initial infected")
	cmd.Flags().Float64Var(&r0, "r0", 0, "initial recovered")
	cmd.Flags().IntVar(&stages, "stages", config.DefaultStages, "infectious stages (stages model)")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
}

// resolveConfig merges preset, config file and flags: presets apply
// first, the config file next, and explicitly set flags always win.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
		cfg.Model = model
	}

	if cmd.Flags().Changed("dt") || cfg.Dt == 0 {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") || cfg.Duration == 0 {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") || cfg.Integrator == "" {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("tolerance") || cfg.Tolerance == 0 {
		cfg.Tolerance = tolerance
	}
	if cmd.Flags().Changed("adaptive") {
		cfg.Adaptive = adaptive
	}
	if cmd.Flags().Changed("beta") || cfg.Rates.Beta == 0 {
		cfg.Rates.Beta = beta
	}
	if cmd.Flags().Changed("gamma") || cfg.Rates.Gamma == 0 {
		cfg.Rates.Gamma = gamma
	}
	if cmd.Flags().Changed("delta") {
		cfg.Rates.Delta = delta
	}
	if cmd.Flags().Changed("stages") || cfg.Rates.Stages == 0 {
		cfg.Rates.Stages = stages
	}
	if cmd.Flags().Changed("s0") {
		cfg.InitState.S = s0
	}
	if cmd.Flags().Changed("i0") {
		cfg.InitState.I = i0
	}
	if cmd.Flags().Changed("r0") {
		cfg.InitState.R = r0
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(experiment.Config{
		Model:      cfg.Model,
		Integrator: cfg.Integrator,
		InitState:  cfg.GetInitState(),
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Tolerance:  cfg.Tolerance,
		Adaptive:   cfg.Adaptive,
		Seed:       cfg.Seed,
		Params:     cfg.GetParams(),
	})
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", cfg.Model)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Model, cfg.Integrator, cfg.Dt, cfg.Duration, cfg.Seed, exp.StateLabels(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	fmt.Print(report.Summary(result.Metrics, []string{"conservation_drift", "non_negativity", "peak_infected"}))

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	allRuns, err := st.List()
	if err != nil {
		return err
	}

	if len(allRuns) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG")

	for _, run := range allRuns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.4f\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
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

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))

	fmt.Print(report.Trajectory(meta.Labels, states, times))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range states[0] {
		if i < len(meta.Labels) && meta.Labels[i] != "" {
			header = append(header, meta.Labels[i])
		} else {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()

	flow, err := registry.GetModel(cfg.Model, cfg.GetParams())
	if err != nil {
		return err
	}
	stepper, err := registry.GetStepper(cfg.Integrator, cfg.Seed)
	if err != nil {
		return err
	}

	m := tui.NewModel(cfg.Model, flow, stepper,
		opensys.State(cfg.GetInitState()),
		opensys.Params(cfg.GetParams()),
		flowLabels(flow), cfg.Dt, frameRate)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func flowLabels(flow opensys.Flow) []string {
	type labeled interface{ StateLabels() []string }
	if lf, ok := flow.(labeled); ok {
		return lf.StateLabels()
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()

	flow, err := registry.GetModel(cfg.Model, cfg.GetParams())
	if err != nil {
		return err
	}
	factory, err := registry.StepperFactory(cfg.Integrator)
	if err != nil {
		return err
	}

	ensemble := sim.NewEnsemble(flow, sim.StepperFactory(factory), runs, cfg.Seed)

	fmt.Printf("running %d-member %s ensemble...\n", runs, cfg.Model)
	start := time.Now()

	results, err := ensemble.Run(context.Background(), opensys.State(cfg.GetInitState()), sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: true,
		Params:        opensys.Params(cfg.GetParams()),
	})
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))

	// Spread of the final infected count across members.
	finals := make([]float64, 0, len(results))
	min, max, sum := 0.0, 0.0, 0.0
	for _, r := range results {
		f := r.Final()
		if len(f) < 2 {
			continue
		}
		v := f[1]
		finals = append(finals, v)
		sum += v
		if len(finals) == 1 || v < min {
			min = v
		}
		if len(finals) == 1 || v > max {
			max = v
		}
	}
	if len(finals) == 0 {
		return fmt.Errorf("no ensemble data")
	}

	fmt.Printf("final infected across %d members:\n", len(finals))
	fmt.Printf("  min:  %.2f\n", min)
	fmt.Printf("  mean: %.2f\n", sum/float64(len(finals)))
	fmt.Printf("  max:  %.2f\n", max)
	fmt.Println()
	fmt.Println(report.Compartment("final I spread", finals))

	return nil
}
