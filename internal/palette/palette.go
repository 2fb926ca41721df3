// Package palette turns ordered color stops into a fixed-size lookup table
// of packed RGBA pixels.
package palette

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// LUTSize is the number of entries in a lookup table.
const LUTSize = 1024

var ErrInvalidPalette = errors.New("palette: stops must be non-empty with non-decreasing positions")

// ColorStop places an RGB color at a position in [0,1].
type ColorStop struct {
	Pos     float64
	R, G, B uint8
}

// Stop builds a ColorStop from a hex color such as "#ff8800". It panics on a
// malformed color and is meant for palette literals.
func Stop(pos float64, hex string) ColorStop {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(fmt.Sprintf("palette: bad color %q: %v", hex, err))
	}
	r, g, b := c.RGB255()
	return ColorStop{Pos: pos, R: r, G: g, B: b}
}

// Palette is an ordered set of stops.
type Palette struct {
	Name  string
	Stops []ColorStop
}

var named = map[string]Palette{
	"grayscale": {Name: "grayscale", Stops: []ColorStop{
		Stop(0, "#000000"),
		Stop(1, "#ffffff"),
	}},
	"classic": {Name: "classic", Stops: []ColorStop{
		Stop(0, "#000000"),
		Stop(0.2, "#00ff00"),
		Stop(0.21, "#ffff00"),
		Stop(0.4, "#ff0000"),
		Stop(0.6, "#ffffff"),
		Stop(1, "#ffffff"),
	}},
	"ocean": {Name: "ocean", Stops: []ColorStop{
		Stop(0, "#001a33"),
		Stop(0.3, "#0077be"),
		Stop(0.6, "#00a8cc"),
		Stop(0.85, "#e0f0ff"),
		Stop(1, "#ffffff"),
	}},
	"inferno": {Name: "inferno", Stops: []ColorStop{
		Stop(0, "#000004"),
		Stop(0.25, "#57106e"),
		Stop(0.5, "#bc3754"),
		Stop(0.75, "#f98e09"),
		Stop(1, "#fcffa4"),
	}},
	"cyberpunk": {Name: "cyberpunk", Stops: []ColorStop{
		Stop(0, "#0a0a0a"),
		Stop(0.35, "#ff00ff"),
		Stop(0.7, "#00ffff"),
		Stop(1, "#ffff00"),
	}},
	"sunset": {Name: "sunset", Stops: []ColorStop{
		Stop(0, "#2d1b2e"),
		Stop(0.4, "#ff6b6b"),
		Stop(0.75, "#feca57"),
		Stop(1, "#fff5f5"),
	}},
}

const DefaultName = "classic"

// Named returns a built-in palette.
func Named(name string) (Palette, bool) {
	p, ok := named[name]
	return p, ok
}

// Names lists the built-in palettes in sorted order.
func Names() []string {
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate reports whether stops can produce a LUT.
func Validate(stops []ColorStop) error {
	if len(stops) == 0 {
		return ErrInvalidPalette
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Pos < stops[i-1].Pos {
			return fmt.Errorf("%w: stop %d at %.3f precedes stop %d at %.3f",
				ErrInvalidPalette, i, stops[i].Pos, i-1, stops[i-1].Pos)
		}
	}
	return nil
}
