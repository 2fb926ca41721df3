package analysis

import (
	"math"
	"testing"
)

func stripes(w, h, period int) []float32 {
	b := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b[y*w+x] = float32(0.5 + 0.5*math.Sin(2*math.Pi*float64(x)/float64(period)))
		}
	}
	return b
}

func TestSpectrumStripes(t *testing.T) {
	tests := []struct {
		w, h, period int
	}{
		{64, 64, 8},
		{64, 64, 16},
		{64, 32, 4},
	}

	for _, tt := range tests {
		res := Spectrum(stripes(tt.w, tt.h, tt.period), tt.w, tt.h)
		if math.Abs(res.Wavelength-float64(tt.period)) > 0.5 {
			t.Errorf("%dx%d period %d: expected wavelength ~%d, got %f (bin %d)",
				tt.w, tt.h, tt.period, tt.period, res.Wavelength, res.DominantBin)
		}
	}
}

func TestSpectrumFlatField(t *testing.T) {
	b := make([]float32, 32*32)
	for i := range b {
		b[i] = 0.3
	}
	res := Spectrum(b, 32, 32)
	if res.Wavelength != 0 || res.DominantBin != 0 {
		t.Errorf("expected no dominant wavelength, got %f (bin %d)", res.Wavelength, res.DominantBin)
	}
}

func TestSpectrumInvalidInput(t *testing.T) {
	if res := Spectrum(make([]float32, 10), 4, 4); res.Radial != nil {
		t.Error("expected empty result for mismatched size")
	}
}
