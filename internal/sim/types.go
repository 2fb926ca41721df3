package sim

import (
	"time"

	"github.com/san-kum/morphogen/internal/analysis"
	"github.com/san-kum/morphogen/internal/grayscott"
)

// Engine is the part of grayscott.Engine a Runner drives.
type Engine interface {
	Seed(cx, cy, radius float64)
	Step()
	Steps() int
	A() grayscott.Field
	B() grayscott.Field
}

// Record is one statistics sample taken during a run.
type Record struct {
	Step  int
	Stats analysis.Statistics
}

// Observer receives every Record as it is taken.
type Observer interface {
	OnRecord(r Record)
}

type ObserverFunc func(r Record)

func (f ObserverFunc) OnRecord(r Record) { f(r) }

type Config struct {
	Steps int
	// RecordEvery takes a statistics sample every n steps; 0 records only
	// the final state.
	RecordEvery int
}

type Result struct {
	StepsTaken int
	History    []Record
	Final      analysis.Statistics
	Elapsed    time.Duration
}
