package sweep

import (
	"io"

	"github.com/gocarina/gocsv"
)

type cellRow struct {
	Feed       float64 `csv:"feed"`
	Kill       float64 `csv:"kill"`
	MinB       float64 `csv:"min_b"`
	MaxB       float64 `csv:"max_b"`
	AvgB       float64 `csv:"avg_b"`
	Entropy    float64 `csv:"entropy"`
	Wavelength float64 `csv:"wavelength"`
}

// WriteCSV writes one row per cell in row-major order.
func (r *Result) WriteCSV(w io.Writer) error {
	rows := make([]cellRow, len(r.Cells))
	for i, c := range r.Cells {
		rows[i] = cellRow{
			Feed:       c.Feed,
			Kill:       c.Kill,
			MinB:       c.Stats.MinB,
			MaxB:       c.Stats.MaxB,
			AvgB:       c.Stats.AvgB,
			Entropy:    c.Stats.Entropy,
			Wavelength: c.Wavelength,
		}
	}
	return gocsv.Marshal(&rows, w)
}
