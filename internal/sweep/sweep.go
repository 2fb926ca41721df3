// Package sweep maps a rectangle of the feed/kill plane by running one small
// independent simulation per parameter pair.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/morphogen/internal/analysis"
	"github.com/san-kum/morphogen/internal/grayscott"
)

var ErrInvalidPlan = errors.New("sweep: invalid plan")

// Plan describes a feed x kill grid. Every cell starts from the same central
// seed, so a plan always produces the same map.
type Plan struct {
	Name       string  `yaml:"name"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Steps      int     `yaml:"steps"`
	FeedMin    float64 `yaml:"feed_min"`
	FeedMax    float64 `yaml:"feed_max"`
	FeedSteps  int     `yaml:"feed_steps"`
	KillMin    float64 `yaml:"kill_min"`
	KillMax    float64 `yaml:"kill_max"`
	KillSteps  int     `yaml:"kill_steps"`
	SeedRadius float64 `yaml:"seed_radius"`
	// Workers bounds concurrent simulations; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`
}

func DefaultPlan() *Plan {
	return &Plan{
		Name:       "pearson",
		Width:      64,
		Height:     64,
		Steps:      2000,
		FeedMin:    0.010,
		FeedMax:    0.080,
		FeedSteps:  8,
		KillMin:    0.045,
		KillMax:    0.070,
		KillSteps:  6,
		SeedRadius: 6,
	}
}

// LoadPlan reads a YAML plan on top of DefaultPlan.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := DefaultPlan()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plan) Validate() error {
	if p.Width < 3 || p.Height < 3 {
		return fmt.Errorf("%w: grid %dx%d is smaller than 3x3", ErrInvalidPlan, p.Width, p.Height)
	}
	if p.Steps < 0 {
		return fmt.Errorf("%w: negative steps", ErrInvalidPlan)
	}
	if p.FeedSteps < 1 || p.KillSteps < 1 {
		return fmt.Errorf("%w: feed_steps and kill_steps must be at least 1", ErrInvalidPlan)
	}
	if p.FeedMax < p.FeedMin || p.KillMax < p.KillMin {
		return fmt.Errorf("%w: ranges must not be reversed", ErrInvalidPlan)
	}
	if p.SeedRadius <= 0 {
		return fmt.Errorf("%w: seed_radius must be positive", ErrInvalidPlan)
	}
	return nil
}

// Feeds returns the feed value of each column.
func (p *Plan) Feeds() []float64 { return Linspace(p.FeedMin, p.FeedMax, p.FeedSteps) }

// Kills returns the kill value of each row.
func (p *Plan) Kills() []float64 { return Linspace(p.KillMin, p.KillMax, p.KillSteps) }

// Linspace returns n evenly spaced values from lo to hi inclusive. A single
// value is lo.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

type Cell struct {
	Feed       float64             `json:"feed"`
	Kill       float64             `json:"kill"`
	Stats      analysis.Statistics `json:"stats"`
	Wavelength float64             `json:"wavelength"`
}

// Result holds the cells row-major: row i is Kills()[i], column j is
// Feeds()[j].
type Result struct {
	Plan    Plan
	Cols    int
	Rows    int
	Cells   []Cell
	Elapsed time.Duration
}

func (r *Result) At(row, col int) Cell { return r.Cells[row*r.Cols+col] }

// Run simulates every cell of the plan. Cells run concurrently, each on its
// own engine. A canceled context stops unfinished cells and returns its
// error.
func Run(ctx context.Context, plan *Plan) (*Result, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	feeds, kills := plan.Feeds(), plan.Kills()
	res := &Result{
		Plan:  *plan,
		Cols:  len(feeds),
		Rows:  len(kills),
		Cells: make([]Cell, len(feeds)*len(kills)),
	}

	workers := plan.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	slog.Debug("sweep started", "plan", plan.Name, "cells", len(res.Cells), "workers", workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, kill := range kills {
		for j, feed := range feeds {
			idx := i*res.Cols + j
			g.Go(func() error {
				cell, err := simulate(ctx, plan, feed, kill)
				if err != nil {
					return err
				}
				res.Cells[idx] = cell
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	slog.Debug("sweep finished", "plan", plan.Name, "elapsed", res.Elapsed)
	return res, nil
}

// cancelCheck is how many steps run between context checks.
const cancelCheck = 64

func simulate(ctx context.Context, plan *Plan, feed, kill float64) (Cell, error) {
	p := grayscott.DefaultParams()
	p.Feed, p.Kill = feed, kill
	e := grayscott.NewEngine(plan.Width, plan.Height, p, grayscott.WithSeed(1))
	e.Seed(float64(plan.Width)/2, float64(plan.Height)/2, plan.SeedRadius)

	for done := 0; done < plan.Steps; done += cancelCheck {
		if err := ctx.Err(); err != nil {
			return Cell{}, err
		}
		e.StepN(min(cancelCheck, plan.Steps-done))
	}

	spectrum := analysis.Spectrum(e.B(), e.Width(), e.Height())
	return Cell{
		Feed:       feed,
		Kill:       kill,
		Stats:      analysis.Compute(e.A(), e.B()),
		Wavelength: spectrum.Wavelength,
	}, nil
}

// Best returns the cell with the largest score.
func (r *Result) Best(score func(Cell) float64) (Cell, bool) {
	if len(r.Cells) == 0 {
		return Cell{}, false
	}
	best, bestScore := r.Cells[0], score(r.Cells[0])
	for _, c := range r.Cells[1:] {
		if s := score(c); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, true
}
