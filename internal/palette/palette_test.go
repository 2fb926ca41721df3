package palette

import (
	"errors"
	"testing"
)

var (
	black = Pack(0, 0, 0, 255)
	white = Pack(255, 255, 255, 255)
)

func luminance(p uint32) float64 {
	r, g, b, _ := Unpack(p)
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

func TestBuildGrayscaleEndpoints(t *testing.T) {
	lut, err := Build([]ColorStop{Stop(0, "#000000"), Stop(1, "#ffffff")})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if lut[0] != black {
		t.Errorf("expected LUT[0] black, got %08x", lut[0])
	}
	if lut[LUTSize-1] != white {
		t.Errorf("expected LUT[1023] white, got %08x", lut[LUTSize-1])
	}
}

func TestBuildGrayscaleMonotonic(t *testing.T) {
	p, _ := Named("grayscale")
	lut, err := Build(p.Stops)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	for i := 1; i < LUTSize; i++ {
		if luminance(lut[i]) < luminance(lut[i-1]) {
			t.Fatalf("luminance decreased at %d: %f < %f", i, luminance(lut[i]), luminance(lut[i-1]))
		}
	}
}

func TestBuildOpaque(t *testing.T) {
	p, _ := Named("inferno")
	lut, err := Build(p.Stops)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for i, px := range lut {
		if _, _, _, a := Unpack(px); a != 255 {
			t.Fatalf("entry %d alpha %d", i, a)
		}
	}
}

func TestBuildMidpoint(t *testing.T) {
	lut, err := Build([]ColorStop{{Pos: 0, R: 0}, {Pos: 0.5, R: 200}, {Pos: 1, R: 0}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// t = 256/1023 sits just past the middle of the first bracket.
	r, _, _, _ := Unpack(lut[256])
	want := uint8(100)
	if r != want {
		t.Errorf("expected red %d at 256, got %d", want, r)
	}
}

func TestBuildZeroWidthBracket(t *testing.T) {
	lut, err := Build([]ColorStop{
		{Pos: 0, R: 10},
		{Pos: 0.5, R: 10},
		{Pos: 0.5, G: 200},
		{Pos: 1, G: 200},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if r, g, _, _ := Unpack(lut[0]); r != 10 || g != 0 {
		t.Errorf("expected first half red, got r=%d g=%d", r, g)
	}
	if r, g, _, _ := Unpack(lut[LUTSize-1]); r != 0 || g != 200 {
		t.Errorf("expected second half green, got r=%d g=%d", r, g)
	}
}

func TestBuildSingleStop(t *testing.T) {
	lut, err := Build([]ColorStop{Stop(0.3, "#336699")})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	want := Pack(0x33, 0x66, 0x99, 255)
	for i, px := range lut {
		if px != want {
			t.Fatalf("entry %d: expected %08x, got %08x", i, want, px)
		}
	}
}

func TestBuildInvalid(t *testing.T) {
	tests := []struct {
		name  string
		stops []ColorStop
	}{
		{"empty", nil},
		{"decreasing", []ColorStop{{Pos: 0.6}, {Pos: 0.2}}},
	}

	for _, tt := range tests {
		if _, err := Build(tt.stops); !errors.Is(err, ErrInvalidPalette) {
			t.Errorf("%s: expected ErrInvalidPalette, got %v", tt.name, err)
		}
	}
}

func TestNamedPalettesBuild(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("expected built-in palettes")
	}
	if _, ok := Named(DefaultName); !ok {
		t.Errorf("default palette %q missing", DefaultName)
	}
	for _, n := range names {
		p, ok := Named(n)
		if !ok {
			t.Fatalf("palette %s listed but missing", n)
		}
		if p.Stops[0].Pos != 0 || p.Stops[len(p.Stops)-1].Pos != 1 {
			t.Errorf("palette %s must span [0,1]", n)
		}
		if _, err := Build(p.Stops); err != nil {
			t.Errorf("palette %s: %v", n, err)
		}
	}

	if _, ok := Named("nonexistent"); ok {
		t.Error("expected lookup miss for unknown palette")
	}
}

func TestStopParsesHex(t *testing.T) {
	s := Stop(0.5, "#ff8000")
	if s.R != 255 || s.G != 128 || s.B != 0 || s.Pos != 0.5 {
		t.Errorf("unexpected stop %+v", s)
	}
}

func TestPackLayout(t *testing.T) {
	p := Pack(1, 2, 3, 4)
	if p != 0x04030201 {
		t.Errorf("expected 0x04030201, got %08x", p)
	}
	r, g, b, a := Unpack(p)
	if r != 1 || g != 2 || b != 3 || a != 4 {
		t.Errorf("unpack mismatch: %d %d %d %d", r, g, b, a)
	}
}
