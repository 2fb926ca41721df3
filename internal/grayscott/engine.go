package grayscott

import (
	"math"
	"math/rand/v2"
	"time"
)

// Laplacian stencil weights. They sum to zero.
const (
	weightCenter   = -1.0
	weightOrthogon = 0.2
	weightDiagonal = 0.05
)

// RandomizeProbability is the chance that Randomize touches a given cell.
const RandomizeProbability = 0.1

const (
	DefaultFeed       = 0.0545
	DefaultKill       = 0.062
	DefaultDiffusionA = 1.0
	DefaultDiffusionB = 0.5
	DefaultDt         = 1.0
)

// Params are the model coefficients. Feed and Kill can change at runtime
// through SetParameters; the diffusion rates and Dt are fixed per engine.
type Params struct {
	Feed       float64
	Kill       float64
	DiffusionA float64
	DiffusionB float64
	Dt         float64
}

func DefaultParams() Params {
	return Params{
		Feed:       DefaultFeed,
		Kill:       DefaultKill,
		DiffusionA: DefaultDiffusionA,
		DiffusionB: DefaultDiffusionB,
		Dt:         DefaultDt,
	}
}

type Engine struct {
	grid       *Grid
	feed, kill float64
	da, db, dt float64
	rng        *rand.Rand
	steps      int
}

type Option func(*Engine)

// WithSeed makes Randomize deterministic.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewPCG(uint64(seed), 0))
	}
}

// NewEngine creates a w×h engine with A=1 and B=0 everywhere.
func NewEngine(w, h int, p Params, opts ...Option) *Engine {
	e := &Engine{
		grid: NewGrid(w, h),
		feed: p.Feed,
		kill: p.Kill,
		da:   p.DiffusionA,
		db:   p.DiffusionB,
		dt:   p.Dt,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return e
}

func (e *Engine) Width() int  { return e.grid.Width }
func (e *Engine) Height() int { return e.grid.Height }
func (e *Engine) Size() int   { return e.grid.Size() }

// A returns the current substrate field. Callers must not modify it.
func (e *Engine) A() Field { return e.grid.A() }

// B returns the current activator field. Callers must not modify it.
func (e *Engine) B() Field { return e.grid.B() }

// Steps reports how many steps ran since construction or the last Clear.
func (e *Engine) Steps() int { return e.steps }

func (e *Engine) Parameters() Params {
	return Params{Feed: e.feed, Kill: e.kill, DiffusionA: e.da, DiffusionB: e.db, Dt: e.dt}
}

// SetParameters changes feed and kill; the next Step uses them.
func (e *Engine) SetParameters(feed, kill float64) {
	e.feed, e.kill = feed, kill
}

// Seed sets B to 1 for every cell closer than radius to (cx, cy).
// Only the circle's bounding box, clipped to the grid, is scanned.
func (e *Engine) Seed(cx, cy, radius float64) {
	if !(radius > 0) || !finite(cx) || !finite(cy) || !finite(radius) {
		return
	}
	w, h := e.grid.Width, e.grid.Height
	x0, x1 := span(cx, radius, w)
	y0, y1 := span(cy, radius, h)
	if x0 > x1 || y0 > y1 {
		return
	}

	b := e.grid.B()
	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		dy := float64(y) - cy
		row := y * w
		for x := x0; x <= x1; x++ {
			dx := float64(x) - cx
			if dx*dx+dy*dy < r2 {
				b[row+x] = 1
			}
		}
	}
}

// Step advances the simulation by one explicit Euler step. Interior cells
// read only the current pair and write only the next pair; the border is
// left as it was.
func (e *Engine) Step() {
	g := e.grid
	w, h := g.Width, g.Height
	a, b := g.A(), g.B()
	na, nb := g.nextA(), g.nextB()

	g.copyBorder()

	f := float32(e.feed)
	fk := float32(e.kill + e.feed)
	da, db, dt := float32(e.da), float32(e.db), float32(e.dt)

	for y := 1; y < h-1; y++ {
		row := y * w
		for i := row + 1; i < row+w-1; i++ {
			av, bv := a[i], b[i]
			r := av * bv * bv
			an := av + dt*(da*laplacian(a, i, w)-r+f*(1-av))
			bn := bv + dt*(db*laplacian(b, i, w)+r-fk*bv)
			na[i] = clamp01(an)
			nb[i] = clamp01(bn)
		}
	}

	g.swap()
	e.steps++
}

// StepN runs n steps.
func (e *Engine) StepN(n int) {
	for i := 0; i < n; i++ {
		e.Step()
	}
}

// Clear resets to maximal substrate and no activator.
func (e *Engine) Clear() {
	e.grid.Fill(1, 0)
	e.steps = 0
}

// Randomize assigns a uniform random B to roughly RandomizeProbability of
// the cells. A is untouched.
func (e *Engine) Randomize() {
	b := e.grid.B()
	for i := range b {
		if e.rng.Float64() < RandomizeProbability {
			b[i] = e.rng.Float32()
		}
	}
}

// Load writes a and b into both buffer pairs.
func (e *Engine) Load(a, b []float32) error {
	return e.grid.Load(a, b)
}

func laplacian(f Field, i, w int) float32 {
	return weightCenter*f[i] +
		weightOrthogon*(f[i-1]+f[i+1]+f[i-w]+f[i+w]) +
		weightDiagonal*(f[i-w-1]+f[i-w+1]+f[i+w-1]+f[i+w+1])
}

// clamp01 maps NaN to 0 so a diverging run still renders.
func clamp01(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v >= 0 {
		return v
	}
	return 0
}

// span returns the inclusive cell range covering [c-r, c+r], clipped to
// [0, n-1]. lo > hi when the range misses the grid.
func span(c, r float64, n int) (lo, hi int) {
	l := math.Min(math.Max(math.Floor(c-r), 0), float64(n))
	u := math.Min(math.Max(math.Ceil(c+r), -1), float64(n-1))
	return int(l), int(u)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
