package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

type SpectrumResult struct {
	// Radial[k] is the mean power of frequencies whose radius rounds to k
	// cycles across the shorter grid side.
	Radial      []float64
	DominantBin int
	// Wavelength is the dominant pattern period in cells, 0 for a flat field.
	Wavelength float64
}

// Spectrum runs a 2D FFT over the mean-removed B field.
func Spectrum(b []float32, w, h int) SpectrumResult {
	if w <= 1 || h <= 1 || len(b) != w*h {
		return SpectrumResult{}
	}

	mean := 0.0
	for _, v := range b {
		mean += float64(v)
	}
	mean /= float64(len(b))

	rows := make([][]float64, h)
	for y := range rows {
		rows[y] = make([]float64, w)
		for x := range rows[y] {
			rows[y][x] = float64(b[y*w+x]) - mean
		}
	}

	freq := fft.FFT2Real(rows)

	n := min(w, h)
	nbins := n/2 + 1
	power := make([]float64, nbins)
	counts := make([]int, nbins)

	for ky := 0; ky < h; ky++ {
		fy := float64(fold(ky, h)) / float64(h)
		for kx := 0; kx < w; kx++ {
			fx := float64(fold(kx, w)) / float64(w)
			k := int(math.Round(math.Hypot(fx, fy) * float64(n)))
			if k >= nbins {
				continue
			}
			a := cmplx.Abs(freq[ky][kx])
			power[k] += a * a
			counts[k]++
		}
	}

	res := SpectrumResult{Radial: power}
	best := 0.0
	for k := range power {
		if counts[k] > 0 {
			power[k] /= float64(counts[k])
		}
		if k > 0 && power[k] > best*(1+1e-9) {
			best = power[k]
			res.DominantBin = k
		}
	}
	if res.DominantBin > 0 && best > 1e-12 {
		res.Wavelength = float64(n) / float64(res.DominantBin)
	} else {
		res.DominantBin = 0
	}
	return res
}

// fold maps an FFT index to its signed-frequency magnitude.
func fold(k, n int) int {
	if k > n/2 {
		return n - k
	}
	return k
}
