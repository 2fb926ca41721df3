package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/morphogen/internal/palette"
)

const (
	halfBlock    = "▀"
	maxCellCache = 8192
)

// Canvas draws a packed RGBA frame with one upper half block per cell: the
// foreground is the upper pixel, the background the lower one.
type Canvas struct {
	Cols, Rows int
	cells      map[[2]uint32]string
}

func NewCanvas(cols, rows int) *Canvas {
	return &Canvas{Cols: max(cols, 1), Rows: max(rows, 1), cells: make(map[[2]uint32]string)}
}

// Fit returns the largest canvas no bigger than maxCols x maxRows that keeps
// the aspect of a gw x gh grid. The canvas never upsamples.
func Fit(gw, gh, maxCols, maxRows int) (cols, rows int) {
	if gw <= 0 || gh <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 1, 1
	}
	scale := math.Max(float64(gw)/float64(maxCols), float64(gh)/float64(2*maxRows))
	if scale < 1 {
		scale = 1
	}
	cols = max(1, int(float64(gw)/scale))
	rows = max(1, int(float64(gh)/scale/2))
	return cols, rows
}

// GridPoint maps a canvas cell to the grid position at its center.
func (c *Canvas) GridPoint(col, row, gw, gh int) (x, y float64, ok bool) {
	if col < 0 || row < 0 || col >= c.Cols || row >= c.Rows {
		return 0, 0, false
	}
	x = (float64(col) + 0.5) * float64(gw) / float64(c.Cols)
	y = (float64(row) + 0.5) * float64(gh) / float64(c.Rows)
	return x, y, true
}

// Render samples pixels (a gw x gh frame) at the canvas resolution.
func (c *Canvas) Render(pixels []uint32, gw, gh int) string {
	if len(pixels) < gw*gh || gw <= 0 || gh <= 0 {
		return ""
	}

	var b strings.Builder
	for row := 0; row < c.Rows; row++ {
		top := ((4*row + 1) * gh) / (4 * c.Rows)
		bottom := ((4*row + 3) * gh) / (4 * c.Rows)
		for col := 0; col < c.Cols; col++ {
			x := ((2*col + 1) * gw) / (2 * c.Cols)
			b.WriteString(c.cell(pixels[top*gw+x], pixels[bottom*gw+x]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (c *Canvas) cell(top, bottom uint32) string {
	key := [2]uint32{top, bottom}
	if s, ok := c.cells[key]; ok {
		return s
	}
	if len(c.cells) >= maxCellCache {
		clear(c.cells)
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexOf(top))).
		Background(lipgloss.Color(hexOf(bottom))).
		Render(halfBlock)
	c.cells[key] = s
	return s
}

func hexOf(p uint32) string {
	r, g, b, _ := palette.Unpack(p)
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hex()
}
