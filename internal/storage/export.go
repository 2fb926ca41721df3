package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/morphogen/internal/sim"
)

// RunSummary is a stored run flattened into one JSON document, without the
// grid payloads.
type RunSummary struct {
	RunMetadata
	History []StatsRow `json:"history"`
}

func Summarize(meta RunMetadata, history []sim.Record) RunSummary {
	rows := make([]StatsRow, len(history))
	for i, r := range history {
		rows[i] = rowFromRecord(r)
	}
	return RunSummary{RunMetadata: meta, History: rows}
}

func ExportSummary(w io.Writer, meta RunMetadata, history []sim.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Summarize(meta, history))
}

func ExportSummaryFile(path string, meta RunMetadata, history []sim.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportSummary(file, meta, history)
}
