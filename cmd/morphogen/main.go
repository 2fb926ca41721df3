package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/morphogen/internal/config"
)

var (
	dataDir    string
	configFile string
	logJSON    bool
	verbose    bool

	preset        string
	paletteName   string
	width         int
	height        int
	feed          float64
	kill          float64
	seed          int64
	steps         int
	recordEvery   int
	stepsPerFrame int
	brushRadius   float64
	seeds         []string
	randomize     bool

	outFile   string
	summary   string
	plotField string
	fromFile  string
	themeName string
	frameRate int
	guiScale  int
	noSave    bool
	benchSize []int
	planFile  string
	csvFile   string
	metric    string
)

// main registers the commands and exits 1 when one of them fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "morphogen",
		Short:         "gray-scott reaction-diffusion lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logJSON, verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".morphogen", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().IntVar(&recordEvery, "record-every", config.DefaultRecordEvery, "statistics sample interval (0 = final only)")
	runCmd.Flags().StringArrayVar(&seeds, "seed-at", nil, "seed circle as x,y,r (repeatable)")
	runCmd.Flags().BoolVar(&randomize, "randomize", false, "start from random B instead of a central seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "print the statistics history of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showStats,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a statistic over the run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "all", "entropy, avg_a, avg_b, max_b or all")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run's state document",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&summary, "summary", "", "write metadata and history as JSON to this file instead")

	importCmd := &cobra.Command{
		Use:   "import [state.json]",
		Short: "restore a state document, optionally continue it, and store it",
		Args:  cobra.ExactArgs(1),
		RunE:  importState,
	}
	importCmd.Flags().IntVar(&steps, "steps", 0, "steps to run after restoring")
	importCmd.Flags().IntVar(&recordEvery, "record-every", config.DefaultRecordEvery, "statistics sample interval (0 = final only)")
	importCmd.Flags().StringVar(&preset, "preset", "imported", "name stored with the run")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a run's final state to PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "morphogen.png", "output PNG")
	renderCmd.Flags().StringVar(&paletteName, "palette", "", "palette (default: the run's palette)")
	renderCmd.Flags().StringVar(&fromFile, "from-file", "", "render a state document instead of a stored run")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "radial power spectrum of B",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	addInteractiveFlags(liveCmd)
	liveCmd.Flags().StringVar(&themeName, "theme", "cyberpunk", "panel theme")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "interactive window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addModelFlags(guiCmd)
	addInteractiveFlags(guiCmd)
	guiCmd.Flags().IntVar(&guiScale, "scale", 3, "screen pixels per cell")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list feed/kill presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	palettesCmd := &cobra.Command{
		Use:   "palettes",
		Short: "list color palettes",
		Args:  cobra.NoArgs,
		RunE:  listPalettes,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput",
		Args:  cobra.NoArgs,
		RunE:  benchEngine,
	}
	benchCmd.Flags().IntSliceVar(&benchSize, "sizes", []int{64, 128, 256, 512}, "grid edge lengths")
	benchCmd.Flags().IntVar(&steps, "steps", 200, "steps per size")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "map a feed/kill rectangle",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&planFile, "plan", "", "sweep plan (yaml)")
	sweepCmd.Flags().StringVar(&csvFile, "csv", "", "write cells to this CSV file")
	sweepCmd.Flags().StringVar(&metric, "metric", "entropy", "entropy, avg_b or wavelength")
	sweepCmd.Flags().IntVar(&steps, "steps", 0, "steps per cell (overrides plan)")
	sweepCmd.Flags().StringVar(&paletteName, "palette", "", "heat map palette")

	rootCmd.AddCommand(runCmd, listCmd, statsCmd, plotCmd, exportCmd, importCmd, renderCmd, spectrumCmd, liveCmd, guiCmd, presetsCmd, palettesCmd, benchCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "feed/kill preset")
	cmd.Flags().StringVar(&paletteName, "palette", "", "color palette")
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "grid width")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "grid height")
	cmd.Flags().Float64Var(&feed, "feed", 0, "feed rate F (overrides preset)")
	cmd.Flags().Float64Var(&kill, "kill", 0, "kill rate k (overrides preset)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for --randomize and the r key (0 = time)")
}

func addInteractiveFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&stepsPerFrame, "speed", config.DefaultStepsPerFrame, "steps per frame")
	cmd.Flags().Float64Var(&brushRadius, "brush", config.DefaultBrushRadius, "brush radius in cells")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "disable the save key")
}

// setupLogging installs the default slog logger on stderr.
func setupLogging(asJSON, debug bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if asJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// loadConfig builds the effective config: defaults, then the config file,
// then the preset when --preset was given, then every flag the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("preset") {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}
	if changed("width") {
		cfg.Width = width
	}
	if changed("height") {
		cfg.Height = height
	}
	if changed("feed") {
		cfg.Model.Feed = feed
	}
	if changed("kill") {
		cfg.Model.Kill = kill
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("palette") {
		cfg.Palette = paletteName
	}
	if changed("steps") {
		cfg.Steps = steps
	}
	if changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if changed("speed") {
		cfg.StepsPerFrame = stepsPerFrame
	}
	if changed("brush") {
		cfg.Brush.Radius = brushRadius
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("config loaded", "preset", cfg.Preset, "width", cfg.Width, "height", cfg.Height,
		"feed", cfg.Model.Feed, "kill", cfg.Model.Kill, "palette", cfg.Palette)
	return cfg, nil
}
