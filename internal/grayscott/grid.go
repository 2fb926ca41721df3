package grayscott

// Field is a row-major concentration field, one value per cell.
type Field []float32

// Grid holds the A and B fields as two buffer pairs. cur selects the pair
// that holds the most recently completed step; the other pair is the write
// target of the next step.
type Grid struct {
	Width, Height int
	a, b          [2]Field
	cur           int
}

// MaxCells bounds the cell count of a single grid.
const MaxCells = 1 << 24

// CellCount returns w*h, or false when either side is not positive or the
// product exceeds MaxCells.
func CellCount(w, h int) (int, bool) {
	if w <= 0 || h <= 0 || w > MaxCells/h {
		return 0, false
	}
	return w * h, true
}

// NewGrid allocates a grid with A filled to 1 and B to 0 in both buffer pairs.
// Non-positive sides become 1; a grid over MaxCells collapses to 1x1.
func NewGrid(w, h int) *Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	n, ok := CellCount(w, h)
	if !ok {
		w, h, n = 1, 1, 1
	}
	g := &Grid{Width: w, Height: h}
	for i := 0; i < 2; i++ {
		g.a[i] = make(Field, n)
		g.b[i] = make(Field, n)
	}
	g.Fill(1, 0)
	return g
}

func (g *Grid) Size() int { return g.Width * g.Height }

// Index returns the linear index of cell (x, y).
func (g *Grid) Index(x, y int) int { return y*g.Width + x }

func (g *Grid) A() Field { return g.a[g.cur] }
func (g *Grid) B() Field { return g.b[g.cur] }

func (g *Grid) nextA() Field { return g.a[g.cur^1] }
func (g *Grid) nextB() Field { return g.b[g.cur^1] }

// swap flips buffer roles. No cell data moves.
func (g *Grid) swap() { g.cur ^= 1 }

// Fill sets every cell of both buffer pairs.
func (g *Grid) Fill(a, b float32) {
	for p := 0; p < 2; p++ {
		fill(g.a[p], a)
		fill(g.b[p], b)
	}
}

// Load copies a and b into both buffer pairs.
func (g *Grid) Load(a, b []float32) error {
	n := g.Size()
	if len(a) != n || len(b) != n {
		return ErrSizeMismatch
	}
	for p := 0; p < 2; p++ {
		copy(g.a[p], a)
		copy(g.b[p], b)
	}
	return nil
}

// copyBorder mirrors the one-cell frame of the current pair into the next
// pair, so the frozen border survives the role flip.
func (g *Grid) copyBorder() {
	w, h := g.Width, g.Height
	src := [2]Field{g.A(), g.B()}
	dst := [2]Field{g.nextA(), g.nextB()}
	for f := 0; f < 2; f++ {
		s, d := src[f], dst[f]
		copy(d[:w], s[:w])
		last := (h - 1) * w
		copy(d[last:last+w], s[last:last+w])
		for y := 1; y < h-1; y++ {
			row := y * w
			d[row] = s[row]
			d[row+w-1] = s[row+w-1]
		}
	}
}

func fill(f Field, v float32) {
	for i := range f {
		f[i] = v
	}
}
