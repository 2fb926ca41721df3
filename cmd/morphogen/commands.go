package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/morphogen/internal/analysis"
	"github.com/san-kum/morphogen/internal/config"
	"github.com/san-kum/morphogen/internal/grayscott"
	"github.com/san-kum/morphogen/internal/gui"
	"github.com/san-kum/morphogen/internal/palette"
	"github.com/san-kum/morphogen/internal/render"
	"github.com/san-kum/morphogen/internal/sim"
	"github.com/san-kum/morphogen/internal/snapshot"
	"github.com/san-kum/morphogen/internal/storage"
	"github.com/san-kum/morphogen/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	e := cfg.NewEngine()
	if err := applyInitialState(e, seeds, randomize); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s on %dx%d for %d steps...\n", cfg.Preset, cfg.Width, cfg.Height, cfg.Steps)
	result, err := sim.New(e).Run(ctx, sim.Config{Steps: cfg.Steps, RecordEvery: cfg.RecordEvery})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		slog.Warn("run interrupted, saving partial result", "steps", result.StepsTaken)
	}

	st := storage.New(dataDir)
	runID, err := st.Save(runMetadata(cfg, e, cfg.Preset, result.Final), snapshot.Export(e), result.History)
	if err != nil {
		return err
	}

	rate := 0.0
	if secs := result.Elapsed.Seconds(); secs > 0 {
		rate = float64(result.StepsTaken) / secs
	}
	fmt.Printf("completed %d steps in %v (%.0f steps/s)\n", result.StepsTaken, result.Elapsed.Round(time.Millisecond), rate)
	fmt.Printf("run id: %s\n\n", runID)
	printStats(os.Stdout, result.Final)
	return nil
}

// applyInitialState seeds e from x,y,r triples, randomizes it, or places one
// central seed when neither is given.
func applyInitialState(e *grayscott.Engine, specs []string, random bool) error {
	if random {
		e.Randomize()
	}
	for _, s := range specs {
		x, y, r, err := parseSeed(s)
		if err != nil {
			return err
		}
		e.Seed(x, y, r)
	}
	if !random && len(specs) == 0 {
		r := float64(min(e.Width(), e.Height())) / 20
		e.Seed(float64(e.Width())/2, float64(e.Height())/2, max(r, 1))
	}
	return nil
}

func parseSeed(s string) (x, y, r float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("seed %q: want x,y,r", s)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("seed %q: %w", s, err)
		}
	}
	return vals[0], vals[1], vals[2], nil
}

func runMetadata(cfg *config.Config, e *grayscott.Engine, name string, final analysis.Statistics) storage.RunMetadata {
	p := e.Parameters()
	return storage.RunMetadata{
		Preset:     name,
		Palette:    cfg.Palette,
		Seed:       cfg.Seed,
		Width:      e.Width(),
		Height:     e.Height(),
		Feed:       p.Feed,
		Kill:       p.Kill,
		DiffusionA: p.DiffusionA,
		DiffusionB: p.DiffusionB,
		Dt:         p.Dt,
		Steps:      e.Steps(),
		Final:      final,
	}
}

func printStats(w io.Writer, s analysis.Statistics) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tMIN\tMAX\tAVG")
	fmt.Fprintf(tw, "A\t%.6f\t%.6f\t%.6f\n", s.MinA, s.MaxA, s.AvgA)
	fmt.Fprintf(tw, "B\t%.6f\t%.6f\t%.6f\n", s.MinB, s.MaxB, s.AvgB)
	tw.Flush()
	fmt.Fprintf(w, "\nentropy: %.6f bits\n", s.Entropy)
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSIZE\tF\tK\tSTEPS\tENTROPY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%.4f\t%.4f\t%d\t%.3f\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Feed, run.Kill,
			run.Steps,
			run.Final.Entropy,
		)
	}
	return w.Flush()
}

func showStats(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadStats(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s, %dx%d, F=%.4f k=%.4f)\n\n", meta.ID, meta.Preset, meta.Width, meta.Height, meta.Feed, meta.Kill)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMIN_A\tMAX_A\tAVG_A\tMIN_B\tMAX_B\tAVG_B\tENTROPY")
	for _, r := range records {
		s := r.Stats
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			r.Step, s.MinA, s.MaxA, s.AvgA, s.MinB, s.MaxB, s.AvgB, s.Entropy)
	}
	return w.Flush()
}

var plotSeries = []struct {
	name    string
	caption string
	value   func(analysis.Statistics) float64
}{
	{"entropy", "entropy (bits)", func(s analysis.Statistics) float64 { return s.Entropy }},
	{"avg_a", "mean A", func(s analysis.Statistics) float64 { return s.AvgA }},
	{"avg_b", "mean B", func(s analysis.Statistics) float64 { return s.AvgB }},
	{"max_b", "max B", func(s analysis.Statistics) float64 { return s.MaxB }},
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadStats(args[0])
	if err != nil {
		return err
	}
	if len(records) < 2 {
		return fmt.Errorf("not enough samples to plot (%d); run with --record-every", len(records))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d (steps %d..%d)\n\n", len(records), records[0].Step, records[len(records)-1].Step)

	plotted := 0
	for _, series := range plotSeries {
		if plotField != "all" && plotField != series.name {
			continue
		}
		data := make([]float64, len(records))
		for i, r := range records {
			data[i] = series.value(r.Stats)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("unknown field %q", plotField)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID := args[0]

	if summary != "" {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		records, err := st.LoadStats(runID)
		if err != nil {
			return err
		}
		if err := storage.ExportSummaryFile(summary, *meta, records); err != nil {
			return err
		}
		fmt.Printf("exported summary to %s\n", summary)
		return nil
	}

	doc, err := st.LoadState(runID)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return snapshot.Write(os.Stdout, doc)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := snapshot.Write(f, doc); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", runID, out)
	return nil
}

func readDocument(path string) (*snapshot.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return snapshot.Read(f)
}

// engineFor builds an engine sized and parameterized like doc and restores
// it.
func engineFor(doc *snapshot.Document) (*grayscott.Engine, error) {
	if err := snapshot.Check(doc); err != nil {
		return nil, err
	}
	p := grayscott.DefaultParams()
	p.Feed, p.Kill = doc.Feed, doc.Kill
	e := grayscott.NewEngine(doc.Width, doc.Height, p)
	if err := snapshot.Import(e, doc); err != nil {
		return nil, err
	}
	return e, nil
}

func importState(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	e, err := engineFor(doc)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}

	n, _ := cmd.Flags().GetInt("steps")
	every, _ := cmd.Flags().GetInt("record-every")
	name, _ := cmd.Flags().GetString("preset")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	result, err := sim.New(e).Run(ctx, sim.Config{Steps: n, RecordEvery: every})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Width, cfg.Height = e.Width(), e.Height()
	st := storage.New(dataDir)
	runID, err := st.Save(runMetadata(cfg, e, name, result.Final), snapshot.Export(e), result.History)
	if err != nil {
		return err
	}
	fmt.Printf("imported %dx%d state, ran %d steps\n", e.Width(), e.Height(), result.StepsTaken)
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	var (
		doc     *snapshot.Document
		palName string
		err     error
	)
	switch {
	case fromFile != "":
		doc, err = readDocument(fromFile)
	case len(args) == 1:
		st := storage.New(dataDir)
		var meta *storage.RunMetadata
		if meta, err = st.Load(args[0]); err != nil {
			return err
		}
		palName = meta.Palette
		doc, err = st.LoadState(args[0])
	default:
		return errors.New("need a run id or --from-file")
	}
	if err != nil {
		return err
	}

	if name, _ := cmd.Flags().GetString("palette"); name != "" {
		palName = name
	}
	if palName == "" {
		palName = palette.DefaultName
	}
	p, ok := palette.Named(palName)
	if !ok {
		return fmt.Errorf("unknown palette %q (available: %v)", palName, palette.Names())
	}

	e, err := engineFor(doc)
	if err != nil {
		return err
	}
	r, err := render.New(p)
	if err != nil {
		return err
	}
	r.Render(e)

	out, _ := cmd.Flags().GetString("out")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := render.WritePNG(f, r.Image()); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d, %s)\n", out, e.Width(), e.Height(), p.Name)
	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	doc, err := st.LoadState(args[0])
	if err != nil {
		return err
	}
	e, err := engineFor(doc)
	if err != nil {
		return err
	}

	res := analysis.Spectrum(e.B(), e.Width(), e.Height())

	fmt.Printf("run: %s\n", args[0])
	if res.DominantBin == 0 {
		fmt.Println("no dominant wavelength (field is flat)")
		return nil
	}
	fmt.Printf("dominant bin: %d\n", res.DominantBin)
	fmt.Printf("wavelength: %.2f cells\n\n", res.Wavelength)
	if len(res.Radial) > 2 {
		graph := asciigraph.Plot(res.Radial[1:],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("radial power (bins 1..)"),
		)
		fmt.Println(graph)
	}
	return nil
}

func saveFunc(cfg *config.Config) func(*grayscott.Engine, string, []sim.Record) (string, error) {
	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	return func(e *grayscott.Engine, name string, history []sim.Record) (string, error) {
		final := analysis.Compute(e.A(), e.B())
		return st.Save(runMetadata(cfg, e, name, final), snapshot.Export(e), history)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	build := func(c config.Config) (viz.Model, error) {
		e := c.NewEngine()
		if err := applyInitialState(e, nil, false); err != nil {
			return viz.Model{}, err
		}
		opts := viz.Options{
			Preset:        c.Preset,
			Palette:       c.Palette,
			Theme:         themeName,
			StepsPerFrame: c.StepsPerFrame,
			BrushRadius:   c.Brush.Radius,
			FPS:           frameRate,
		}
		if save := saveFunc(&c); save != nil {
			opts.Save = save
		}
		return viz.NewModel(e, opts)
	}

	var m tea.Model
	if f := cmd.Flags().Lookup("preset"); f != nil && f.Changed {
		live, err := build(*cfg)
		if err != nil {
			return err
		}
		m = live
	} else {
		m = viz.NewLauncher(func(name string) (viz.Model, error) {
			c := *cfg
			if err := c.ApplyPreset(name); err != nil {
				return viz.Model{}, err
			}
			return build(c)
		})
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	e := cfg.NewEngine()
	if err := applyInitialState(e, nil, false); err != nil {
		return err
	}

	opts := gui.Options{
		Preset:        cfg.Preset,
		Palette:       cfg.Palette,
		StepsPerFrame: cfg.StepsPerFrame,
		BrushRadius:   cfg.Brush.Radius,
		Scale:         guiScale,
	}
	if save := saveFunc(cfg); save != nil {
		opts.Save = save
	}
	return gui.Run(e, opts)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tF\tK\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%s\n", name, p.Feed, p.Kill, p.Description)
	}
	return w.Flush()
}

// listPalettes prints each palette with a swatch sampled from its LUT.
func listPalettes(cmd *cobra.Command, args []string) error {
	const swatch = 32
	for _, name := range palette.Names() {
		p, _ := palette.Named(name)
		lut, err := palette.Build(p.Stops)
		if err != nil {
			return err
		}
		var b strings.Builder
		for i := 0; i < swatch; i++ {
			r, g, bl, _ := palette.Unpack(lut[i*(palette.LUTSize-1)/(swatch-1)])
			bg := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, bl))
			b.WriteString(lipgloss.NewStyle().Background(bg).Render(" "))
		}
		fmt.Printf("%-10s %s  %d stops\n", name, b.String(), len(p.Stops))
	}
	return nil
}

func benchEngine(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("steps")
	if n <= 0 {
		return fmt.Errorf("steps must be positive, got %d", n)
	}

	fmt.Printf("benchmarking %d steps per size\n\n", n)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tCELLS\tTIME\tSTEPS/SEC\tMCELLS/SEC")

	for _, size := range benchSize {
		if size < 3 {
			return fmt.Errorf("size must be at least 3, got %d", size)
		}
		e := grayscott.NewEngine(size, size, grayscott.DefaultParams(), grayscott.WithSeed(42))
		e.Seed(float64(size)/2, float64(size)/2, float64(size)/10)

		start := time.Now()
		e.StepN(n)
		elapsed := time.Since(start)

		cells := size * size
		rate := float64(n) / elapsed.Seconds()
		fmt.Fprintf(w, "%dx%d\t%d\t%v\t%.1f\t%.2f\n",
			size, size, cells, elapsed.Round(time.Microsecond), rate, rate*float64(cells)/1e6)
		slog.Debug("bench size done", "size", size, "elapsed", elapsed)
	}
	return w.Flush()
}
