package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/morphogen/internal/analysis"
	"github.com/san-kum/morphogen/internal/sim"
	"github.com/san-kum/morphogen/internal/snapshot"
)

const (
	metadataFile = "metadata.json"
	stateFile    = "state.json"
	statsFile    = "stats.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string              `json:"id"`
	Preset     string              `json:"preset"`
	Palette    string              `json:"palette"`
	Timestamp  time.Time           `json:"timestamp"`
	Seed       int64               `json:"seed"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Feed       float64             `json:"feed"`
	Kill       float64             `json:"kill"`
	DiffusionA float64             `json:"diffusion_a"`
	DiffusionB float64             `json:"diffusion_b"`
	Dt         float64             `json:"dt"`
	Steps      int                 `json:"steps"`
	Final      analysis.Statistics `json:"final"`
}

// StatsRow is one line of stats.csv.
type StatsRow struct {
	Step    int     `csv:"step"`
	MinA    float64 `csv:"min_a"`
	MaxA    float64 `csv:"max_a"`
	AvgA    float64 `csv:"avg_a"`
	MinB    float64 `csv:"min_b"`
	MaxB    float64 `csv:"max_b"`
	AvgB    float64 `csv:"avg_b"`
	Entropy float64 `csv:"entropy"`
}

func rowFromRecord(r sim.Record) StatsRow {
	return StatsRow{
		Step:    r.Step,
		MinA:    r.Stats.MinA,
		MaxA:    r.Stats.MaxA,
		AvgA:    r.Stats.AvgA,
		MinB:    r.Stats.MinB,
		MaxB:    r.Stats.MaxB,
		AvgB:    r.Stats.AvgB,
		Entropy: r.Stats.Entropy,
	}
}

// Record converts a row back into a sim.Record.
func (r StatsRow) Record() sim.Record {
	return sim.Record{Step: r.Step, Stats: analysis.Statistics{
		MinA: r.MinA, MaxA: r.MaxA, AvgA: r.AvgA,
		MinB: r.MinB, MaxB: r.MaxB, AvgB: r.AvgB,
		Entropy: r.Entropy,
	}}
}

// ErrInvalidRunName indicates a run name prefix that would escape the data
// directory.
var ErrInvalidRunName = errors.New("storage: invalid run name")

// Save writes a run directory holding metadata, the state document and the
// statistics history. meta.ID and meta.Timestamp are filled in. A run that
// fails part way is removed.
func (s *Store) Save(meta RunMetadata, doc *snapshot.Document, history []sim.Record) (string, error) {
	if err := checkRunName(meta.Preset); err != nil {
		return "", err
	}
	if err := s.Init(); err != nil {
		return "", err
	}

	meta.Timestamp = time.Now()
	runID, runDir, err := s.newRunDir(meta.Preset, meta.Timestamp)
	if err != nil {
		return "", err
	}
	meta.ID = runID

	if err := writeRun(runDir, meta, doc, history); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			slog.Warn("removing incomplete run", "run", runID, "error", rmErr)
		}
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, doc *snapshot.Document, history []sim.Record) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	stateF, err := os.Create(filepath.Join(runDir, stateFile))
	if err != nil {
		return err
	}
	defer stateF.Close()
	if err := snapshot.Write(stateF, doc); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	rows := make([]StatsRow, len(history))
	for i, r := range history {
		rows[i] = rowFromRecord(r)
	}
	statsF, err := os.Create(filepath.Join(runDir, statsFile))
	if err != nil {
		return err
	}
	defer statsF.Close()
	if len(rows) > 0 {
		if err := gocsv.MarshalFile(&rows, statsF); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	}
	return nil
}

// checkRunName accepts an empty name or a single path element.
func checkRunName(name string) error {
	if name == "" {
		return nil
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidRunName, name)
	}
	return nil
}

func (s *Store) newRunDir(prefix string, ts time.Time) (string, string, error) {
	if prefix == "" {
		prefix = "run"
	}
	base := fmt.Sprintf("%s_%d", prefix, ts.Unix())
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

// List returns every readable run, oldest first. Unreadable run directories
// are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			slog.Warn("skipping unreadable run", "run", entry.Name(), "error", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadState(runID string) (*snapshot.Document, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, stateFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return snapshot.Read(f)
}

func (s *Store) LoadStats(runID string) ([]sim.Record, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, statsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []sim.Record{}, nil
	}

	var rows []StatsRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	records := make([]sim.Record, len(rows))
	for i, r := range rows {
		records[i] = r.Record()
	}
	return records, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
