package palette

// LUT maps an index in [0, LUTSize) to a packed pixel.
type LUT [LUTSize]uint32

// Pack encodes a color as little-endian RGBA, so the uint32's bytes in
// memory read R, G, B, A.
func Pack(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}

// Unpack is the inverse of Pack.
func Unpack(p uint32) (r, g, b, a uint8) {
	return uint8(p), uint8(p >> 8), uint8(p >> 16), uint8(p >> 24)
}

// Build interpolates stops into a LUT. Entry i samples t = i/(LUTSize-1);
// the bracketing stops are blended linearly per channel.
func Build(stops []ColorStop) (*LUT, error) {
	if err := Validate(stops); err != nil {
		return nil, err
	}

	lut := new(LUT)
	last := float64(LUTSize - 1)
	for i := range lut {
		t := float64(i) / last
		lo, hi := bracket(stops, t)

		localT := 0.0
		if span := hi.Pos - lo.Pos; span > 0 {
			localT = (t - lo.Pos) / span
		}
		lut[i] = Pack(
			lerp(lo.R, hi.R, localT),
			lerp(lo.G, hi.G, localT),
			lerp(lo.B, hi.B, localT),
			255,
		)
	}
	return lut, nil
}

// bracket finds stops[j], stops[j+1] with stops[j].Pos <= t <= stops[j+1].Pos.
// t outside the covered range snaps to the nearest end stop.
func bracket(stops []ColorStop, t float64) (ColorStop, ColorStop) {
	if len(stops) == 1 || t <= stops[0].Pos {
		return stops[0], stops[0]
	}
	for j := 0; j < len(stops)-1; j++ {
		if t >= stops[j].Pos && t <= stops[j+1].Pos {
			return stops[j], stops[j+1]
		}
	}
	end := stops[len(stops)-1]
	return end, end
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
