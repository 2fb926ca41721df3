package analysis

import (
	"log/slog"
	"math"
)

// HistogramBins is the number of equal-width bins over [0,1] used for the
// entropy of field B.
const HistogramBins = 20

type Statistics struct {
	MinA    float64 `json:"minA"`
	MaxA    float64 `json:"maxA"`
	AvgA    float64 `json:"avgA"`
	MinB    float64 `json:"minB"`
	MaxB    float64 `json:"maxB"`
	AvgB    float64 `json:"avgB"`
	Entropy float64 `json:"entropy"`
}

// Compute scans both fields once. a and b must have equal length; an empty
// grid yields the zero value.
func Compute(a, b []float32) Statistics {
	n := len(a)
	if n == 0 || len(b) != n {
		return Statistics{}
	}

	var hist [HistogramBins]int
	minA, maxA := a[0], a[0]
	minB, maxB := b[0], b[0]
	var sumA, sumB float64

	for i := 0; i < n; i++ {
		av, bv := a[i], b[i]
		if av < minA {
			minA = av
		}
		if av > maxA {
			maxA = av
		}
		if bv < minB {
			minB = bv
		}
		if bv > maxB {
			maxB = bv
		}
		sumA += float64(av)
		sumB += float64(bv)
		hist[bin(bv)]++
	}

	return Statistics{
		MinA:    float64(minA),
		MaxA:    float64(maxA),
		AvgA:    sumA / float64(n),
		MinB:    float64(minB),
		MaxB:    float64(maxB),
		AvgB:    sumB / float64(n),
		Entropy: entropy(hist[:], n),
	}
}

// bin places v in [0, HistogramBins); 1.0 falls in the last bin. Values are
// clamped before the int conversion, and NaN lands in bin 0.
func bin(v float32) int {
	if v >= 1 {
		return HistogramBins - 1
	}
	if !(v > 0) {
		return 0
	}
	idx := int(float64(v) * HistogramBins)
	if idx >= HistogramBins {
		return HistogramBins - 1
	}
	return idx
}

func entropy(hist []int, n int) float64 {
	h := 0.0
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(n)
		h -= p * math.Log2(p)
	}
	return h
}

func (s Statistics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("min_a", s.MinA),
		slog.Float64("max_a", s.MaxA),
		slog.Float64("avg_a", s.AvgA),
		slog.Float64("min_b", s.MinB),
		slog.Float64("max_b", s.MaxB),
		slog.Float64("avg_b", s.AvgB),
		slog.Float64("entropy", s.Entropy),
	)
}
