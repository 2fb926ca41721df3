package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/morphogen/internal/analysis"
)

// Runner steps an engine, applying queued seed requests at step boundaries
// and sampling statistics along the way.
type Runner struct {
	engine    Engine
	queue     *SeedQueue
	observers []Observer
}

func New(e Engine) *Runner {
	return &Runner{
		engine:    e,
		queue:     NewSeedQueue(),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Queue is where other goroutines send brush input.
func (r *Runner) Queue() *SeedQueue { return r.queue }

func (r *Runner) Engine() Engine { return r.engine }

// Frame runs n steps the way an interactive loop does: pending seeds first,
// then each step.
func (r *Runner) Frame(n int) {
	for i := 0; i < n; i++ {
		r.queue.Drain(r.engine)
		r.engine.Step()
	}
	if n == 0 {
		r.queue.Drain(r.engine)
	}
}

func (r *Runner) Stats() analysis.Statistics {
	return analysis.Compute(r.engine.A(), r.engine.B())
}

func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		History: make([]Record, 0, historyCap(cfg)),
	}
	start := time.Now()
	slog.Debug("run started", "steps", cfg.Steps, "record_every", cfg.RecordEvery)

	if cfg.RecordEvery > 0 {
		r.record(result)
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			result.Final = r.Stats()
			return result, ctx.Err()
		default:
		}

		r.queue.Drain(r.engine)
		r.engine.Step()
		result.StepsTaken++

		if cfg.RecordEvery > 0 && result.StepsTaken%cfg.RecordEvery == 0 {
			r.record(result)
		}
	}

	result.Elapsed = time.Since(start)
	result.Final = r.Stats()
	if n := len(result.History); cfg.RecordEvery == 0 || n == 0 || result.History[n-1].Step != r.engine.Steps() {
		rec := Record{Step: r.engine.Steps(), Stats: result.Final}
		result.History = append(result.History, rec)
		r.notify(rec)
	}

	slog.Debug("run finished", "steps", result.StepsTaken, "elapsed", result.Elapsed, "stats", result.Final)
	return result, nil
}

func (r *Runner) record(result *Result) {
	rec := Record{Step: r.engine.Steps(), Stats: r.Stats()}
	result.History = append(result.History, rec)
	r.notify(rec)
}

func (r *Runner) notify(rec Record) {
	for _, o := range r.observers {
		o.OnRecord(rec)
	}
}

func validateConfig(cfg Config) error {
	if cfg.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", cfg.Steps)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("record interval must not be negative, got %d", cfg.RecordEvery)
	}
	return nil
}

func historyCap(cfg Config) int {
	if cfg.RecordEvery <= 0 {
		return 1
	}
	return cfg.Steps/cfg.RecordEvery + 2
}
