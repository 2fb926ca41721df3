package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/morphogen/internal/palette"
	"github.com/san-kum/morphogen/internal/sweep"
)

var sweepMetrics = map[string]func(sweep.Cell) float64{
	"entropy":    func(c sweep.Cell) float64 { return c.Stats.Entropy },
	"avg_b":      func(c sweep.Cell) float64 { return c.Stats.AvgB },
	"wavelength": func(c sweep.Cell) float64 { return c.Wavelength },
}

func runSweep(cmd *cobra.Command, args []string) error {
	plan := sweep.DefaultPlan()
	if planFile != "" {
		loaded, err := sweep.LoadPlan(planFile)
		if err != nil {
			return fmt.Errorf("failed to load plan: %w", err)
		}
		plan = loaded
	}
	if n, _ := cmd.Flags().GetInt("steps"); cmd.Flags().Changed("steps") {
		plan.Steps = n
	}

	score, ok := sweepMetrics[metric]
	if !ok {
		return fmt.Errorf("unknown metric %q", metric)
	}

	palName := palette.DefaultName
	if name, _ := cmd.Flags().GetString("palette"); name != "" {
		palName = name
	}
	p, ok := palette.Named(palName)
	if !ok {
		return fmt.Errorf("unknown palette %q (available: %v)", palName, palette.Names())
	}
	lut, err := palette.Build(p.Stops)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %d x %d cells (%dx%d grid, %d steps each)...\n",
		plan.FeedSteps, plan.KillSteps, plan.Width, plan.Height, plan.Steps)
	res, err := sweep.Run(ctx, plan)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", res.Elapsed.Round(time.Millisecond))

	fmt.Println(heatmap(res, score, lut))

	if best, ok := res.Best(score); ok {
		fmt.Printf("highest %s: %.4f at F=%.4f k=%.4f\n", metric, score(best), best.Feed, best.Kill)
	}

	if csvFile != "" {
		f, err := os.Create(csvFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := res.WriteCSV(f); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvFile)
	}
	return nil
}

// heatmap draws one colored block per cell, kill down and feed across,
// scaled to the metric's range over the sweep.
func heatmap(res *sweep.Result, score func(sweep.Cell) float64, lut *palette.LUT) string {
	lo, hi := score(res.Cells[0]), score(res.Cells[0])
	for _, c := range res.Cells {
		lo = min(lo, score(c))
		hi = max(hi, score(c))
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	feeds, kills := res.Plan.Feeds(), res.Plan.Kills()
	var b strings.Builder
	b.WriteString("  k \\ F  ")
	for _, f := range feeds {
		b.WriteString(fmt.Sprintf("%-7.3f", f))
	}
	b.WriteString("\n")
	for i, k := range kills {
		b.WriteString(fmt.Sprintf("  %.4f ", k))
		for j := range feeds {
			t := (score(res.At(i, j)) - lo) / span
			idx := min(max(int(t*(palette.LUTSize-1)), 0), palette.LUTSize-1)
			r, g, bl, _ := palette.Unpack(lut[idx])
			bg := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, bl))
			b.WriteString(lipgloss.NewStyle().Background(bg).Render("      ") + " ")
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n  scale: %.4f (low) .. %.4f (high)\n", lo, hi))
	return b.String()
}
