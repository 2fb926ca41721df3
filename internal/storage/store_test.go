package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/morphogen/internal/analysis"
	"github.com/san-kum/morphogen/internal/grayscott"
	"github.com/san-kum/morphogen/internal/sim"
	"github.com/san-kum/morphogen/internal/snapshot"
)

func testRun(t *testing.T) (RunMetadata, *snapshot.Document, []sim.Record) {
	t.Helper()
	e := grayscott.NewEngine(16, 12, grayscott.DefaultParams())
	e.Seed(8, 6, 3)
	e.StepN(5)

	history := []sim.Record{
		{Step: 0, Stats: analysis.Statistics{MinA: 1, MaxA: 1, AvgA: 1}},
		{Step: 5, Stats: analysis.Compute(e.A(), e.B())},
	}
	meta := RunMetadata{
		Preset: "coral",
		Width:  16,
		Height: 12,
		Feed:   0.0545,
		Kill:   0.062,
		Steps:  5,
		Seed:   42,
		Final:  history[1].Stats,
	}
	return meta, snapshot.Export(e), history
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, doc, history := testRun(t)
	runID, err := st.Save(meta, doc, history)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ID != runID {
		t.Errorf("expected id %s, got %s", runID, loaded.ID)
	}
	if loaded.Preset != "coral" || loaded.Steps != 5 || loaded.Seed != 42 {
		t.Errorf("metadata mismatch: %+v", loaded)
	}
	if loaded.Final != meta.Final {
		t.Errorf("final stats mismatch: got %+v want %+v", loaded.Final, meta.Final)
	}

	state, err := st.LoadState(runID)
	if err != nil {
		t.Fatalf("load state failed: %v", err)
	}
	if state.GridA != doc.GridA || state.GridB != doc.GridB {
		t.Error("state payload changed on disk")
	}

	records, err := st.LoadStats(runID)
	if err != nil {
		t.Fatalf("load stats failed: %v", err)
	}
	if len(records) != len(history) {
		t.Fatalf("expected %d records, got %d", len(history), len(records))
	}
	for i := range records {
		if records[i].Step != history[i].Step {
			t.Errorf("record %d: step %d, want %d", i, records[i].Step, history[i].Step)
		}
	}
	if records[0].Stats.AvgA != 1 {
		t.Errorf("expected avgA 1, got %v", records[0].Stats.AvgA)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	meta, doc, history := testRun(t)
	first, err := st.Save(meta, doc, history)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(meta, doc, history)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first == second {
		t.Fatalf("run ids collided: %s", first)
	}

	if err := os.Mkdir(filepath.Join(tmpDir, "broken"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	meta, doc, history := testRun(t)
	runID, err := st.Save(meta, doc, history)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "state.json", "stats.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(runDir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("step,min_a,max_a,avg_a,min_b,max_b,avg_b,entropy")) {
		t.Errorf("unexpected csv header: %q", bytes.SplitN(data, []byte("\n"), 2)[0])
	}
}

func TestStoreEmptyHistory(t *testing.T) {
	st := New(t.TempDir())
	meta, doc, _ := testRun(t)

	runID, err := st.Save(meta, doc, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	records, err := st.LoadStats(runID)
	if err != nil {
		t.Fatalf("load stats failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestStoreRejectsEscapingNames(t *testing.T) {
	root := t.TempDir()
	data := filepath.Join(root, "data")
	st := New(data)
	meta, doc, history := testRun(t)

	for _, name := range []string{"../../x", "../x", "a/b", `a\b`, "..", "."} {
		meta.Preset = name
		if _, err := st.Save(meta, doc, history); !errors.Is(err, ErrInvalidRunName) {
			t.Errorf("name %q: expected ErrInvalidRunName, got %v", name, err)
		}
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "data" {
			t.Errorf("unexpected entry %q outside the data directory", e.Name())
		}
	}
}

func TestStoreSaveFailureRemovesRun(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	meta, doc, history := testRun(t)
	meta.Final.Entropy = math.NaN()

	if _, err := st.Save(meta, doc, history); err == nil {
		t.Fatal("expected error for unencodable metadata")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected incomplete run to be removed, found %d entries", len(entries))
	}
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadState("nope"); err == nil {
		t.Error("expected error for missing state")
	}
}

func TestExportSummary(t *testing.T) {
	meta, _, history := testRun(t)
	meta.ID = "coral_1"

	var buf bytes.Buffer
	if err := ExportSummary(&buf, meta, history); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out["id"] != "coral_1" {
		t.Errorf("expected id coral_1, got %v", out["id"])
	}
	hist, ok := out["history"].([]any)
	if !ok || len(hist) != 2 {
		t.Errorf("expected 2 history rows, got %v", out["history"])
	}
	if _, ok := out["gridA"]; ok {
		t.Error("summary should not carry grid payloads")
	}
}
