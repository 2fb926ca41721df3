// Package render maps concentration fields to packed RGBA pixels through a
// palette lookup table.
package render

import (
	"encoding/binary"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/san-kum/morphogen/internal/grayscott"
	"github.com/san-kum/morphogen/internal/palette"
)

// Fields is the read-only view of a simulation the renderer needs.
type Fields interface {
	Width() int
	Height() int
	A() grayscott.Field
	B() grayscott.Field
}

type Renderer struct {
	lut    *palette.LUT
	name   string
	pixels []uint32
	w, h   int
}

// New creates a renderer using p.
func New(p palette.Palette) (*Renderer, error) {
	r := &Renderer{}
	if err := r.UsePalette(p); err != nil {
		return nil, err
	}
	return r, nil
}

// SetPalette rebuilds the LUT from stops. On error the previous LUT stays.
func (r *Renderer) SetPalette(stops []palette.ColorStop) error {
	lut, err := palette.Build(stops)
	if err != nil {
		return err
	}
	r.lut = lut
	r.name = "custom"
	return nil
}

// UsePalette is SetPalette for a named palette.
func (r *Renderer) UsePalette(p palette.Palette) error {
	if err := r.SetPalette(p.Stops); err != nil {
		return err
	}
	r.name = p.Name
	return nil
}

func (r *Renderer) PaletteName() string { return r.name }

func (r *Renderer) LUT() *palette.LUT { return r.lut }

// Index maps a cell to its LUT entry: val = a-b, idx = floor((1-val)*1023)
// clamped to the table.
func Index(a, b float32) int {
	x := (1 - (float64(a) - float64(b))) * (palette.LUTSize - 1)
	if !(x > 0) {
		return 0
	}
	if x >= palette.LUTSize-1 {
		return palette.LUTSize - 1
	}
	return int(math.Floor(x))
}

// Render fills and returns the pixel buffer for the current fields. The
// buffer is reused by later calls.
func (r *Renderer) Render(src Fields) []uint32 {
	w, h := src.Width(), src.Height()
	if n := w * h; len(r.pixels) != n {
		r.pixels = make([]uint32, n)
	}
	r.w, r.h = w, h

	a, b, lut := src.A(), src.B(), r.lut
	for i := range r.pixels {
		r.pixels[i] = lut[Index(a[i], b[i])]
	}
	return r.pixels
}

// Pixels returns the last rendered frame.
func (r *Renderer) Pixels() []uint32 { return r.pixels }

// Image copies the last rendered frame into an RGBA image.
func (r *Renderer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.w, r.h))
	for i, px := range r.pixels {
		binary.LittleEndian.PutUint32(img.Pix[i*4:], px)
	}
	return img
}

// Bytes exposes the last frame as RGBA bytes, the layout texture uploads expect.
func (r *Renderer) Bytes() []byte {
	buf := make([]byte, len(r.pixels)*4)
	for i, px := range r.pixels {
		binary.LittleEndian.PutUint32(buf[i*4:], px)
	}
	return buf
}

func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
