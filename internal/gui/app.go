package gui

import (
	"fmt"
	"image/color"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/morphogen/internal/analysis"
	"github.com/san-kum/morphogen/internal/config"
	"github.com/san-kum/morphogen/internal/grayscott"
	"github.com/san-kum/morphogen/internal/palette"
	"github.com/san-kum/morphogen/internal/render"
	"github.com/san-kum/morphogen/internal/sim"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColBrush   = rl.NewColor(255, 255, 255, 90)
)

const (
	panelWidth   = 300
	minHeight    = 480
	maxTelemetry = 200
	statusTTL    = 3 * time.Second
)

// SaveFunc persists the engine under a preset name and returns a run id.
type SaveFunc func(e *grayscott.Engine, preset string, history []sim.Record) (string, error)

type Options struct {
	Preset        string
	Palette       string
	StepsPerFrame int
	BrushRadius   float64
	// Scale is the on-screen size of one cell in pixels.
	Scale int
	Save  SaveFunc
}

// App is the raylib window: the field is drawn from a texture that is
// refreshed from the renderer every frame.
type App struct {
	Engine   *grayscott.Engine
	Runner   *sim.Runner
	Renderer *render.Renderer
	Opts     Options

	Presets    []string
	Palettes   []string
	PresetSel  int
	PaletteSel int
	Running    bool
	ShowHUD    bool

	Stats     analysis.Statistics
	Telemetry []float64
	Records   []sim.Record
	Font      rl.Font

	tex         rl.Texture2D
	colors      []color.RGBA
	status      string
	statusUntil time.Time
	frame       int
}

func initWindow(w, h int) {
	rl.InitWindow(int32(w), int32(h), "morphogen")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// Run opens a window for e and blocks until it is closed.
func Run(e *grayscott.Engine, opts Options) error {
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = config.DefaultStepsPerFrame
	}
	if opts.BrushRadius <= 0 {
		opts.BrushRadius = config.DefaultBrushRadius
	}
	if opts.Scale <= 0 {
		opts.Scale = 3
	}
	if opts.Palette == "" {
		opts.Palette = palette.DefaultName
	}
	p, ok := palette.Named(opts.Palette)
	if !ok {
		return fmt.Errorf("unknown palette %q", opts.Palette)
	}
	r, err := render.New(p)
	if err != nil {
		return err
	}

	fieldW, fieldH := e.Width()*opts.Scale, e.Height()*opts.Scale
	initWindow(fieldW+panelWidth, max(fieldH, minHeight))
	defer rl.CloseWindow()

	app := NewApp(e, r, opts)
	defer app.Unload()
	app.RunLoop()
	return nil
}

// NewApp wires the simulation to a window. It must be called after the
// window exists.
func NewApp(e *grayscott.Engine, r *render.Renderer, opts Options) *App {
	a := &App{
		Engine:    e,
		Runner:    sim.New(e),
		Renderer:  r,
		Opts:      opts,
		Presets:   config.ListPresets(),
		Palettes:  palette.Names(),
		Running:   true,
		ShowHUD:   true,
		Telemetry: make([]float64, 0, maxTelemetry),
		Font:      rl.GetFontDefault(),
		colors:    make([]color.RGBA, e.Width()*e.Height()),
	}
	a.PresetSel = indexOf(a.Presets, opts.Preset)
	a.PaletteSel = indexOf(a.Palettes, opts.Palette)

	img := rl.GenImageColor(e.Width(), e.Height(), rl.Black)
	a.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(a.tex, rl.FilterPoint)
	rl.UnloadImage(img)
	return a
}

func indexOf(list []string, name string) int {
	for i, s := range list {
		if s == name {
			return i
		}
	}
	return -1
}

func (a *App) Unload() {
	rl.UnloadTexture(a.tex)
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

// Update handles input and advances the simulation. It returns false once
// the user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return false
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyN) && !a.Running:
		a.Runner.Frame(1)
	case rl.IsKeyPressed(rl.KeyC):
		a.Engine.Clear()
		a.Telemetry = a.Telemetry[:0]
		a.Records = a.Records[:0]
		a.setStatus("cleared")
	case rl.IsKeyPressed(rl.KeyR):
		a.Engine.Randomize()
		a.setStatus("randomized")
	case rl.IsKeyPressed(rl.KeyP):
		dir := 1
		if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
			dir = -1
		}
		a.cyclePreset(dir)
	case rl.IsKeyPressed(rl.KeyL):
		a.cyclePalette()
	case rl.IsKeyPressed(rl.KeyH):
		a.ShowHUD = !a.ShowHUD
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		a.Opts.StepsPerFrame = min(a.Opts.StepsPerFrame*2, 256)
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		a.Opts.StepsPerFrame = max(a.Opts.StepsPerFrame/2, 1)
	case rl.IsKeyPressed(rl.KeyS):
		a.save()
	case rl.IsKeyPressed(rl.KeyF12):
		a.screenshot()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.Opts.BrushRadius = min(max(a.Opts.BrushRadius+float64(wheel), 1), 100)
	}

	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		mouse := rl.GetMousePosition()
		if x, y, ok := a.toGrid(mouse); ok {
			a.Runner.Queue().Push(x, y, a.Opts.BrushRadius)
		}
	}

	if a.Running {
		a.Runner.Frame(a.Opts.StepsPerFrame)
	} else {
		a.Runner.Frame(0)
	}

	a.frame++
	a.Stats = a.Runner.Stats()
	a.Telemetry = append(a.Telemetry, a.Stats.Entropy)
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
	if a.frame%30 == 0 {
		a.Records = append(a.Records, sim.Record{Step: a.Engine.Steps(), Stats: a.Stats})
	}
	return true
}

// toGrid maps a window position to grid coordinates.
func (a *App) toGrid(p rl.Vector2) (float64, float64, bool) {
	s := float64(a.Opts.Scale)
	x, y := float64(p.X)/s, float64(p.Y)/s
	if x < 0 || y < 0 || x >= float64(a.Engine.Width()) || y >= float64(a.Engine.Height()) {
		return 0, 0, false
	}
	return x, y, true
}

func (a *App) cyclePreset(dir int) {
	if len(a.Presets) == 0 {
		return
	}
	a.PresetSel = (a.PresetSel + dir + len(a.Presets)) % len(a.Presets)
	name := a.Presets[a.PresetSel]
	p := config.GetPreset(name)
	a.Engine.SetParameters(p.Feed, p.Kill)
	a.Opts.Preset = name
	a.setStatus("preset " + name)
}

func (a *App) cyclePalette() {
	if len(a.Palettes) == 0 {
		return
	}
	a.PaletteSel = (a.PaletteSel + 1) % len(a.Palettes)
	p, _ := palette.Named(a.Palettes[a.PaletteSel])
	if err := a.Renderer.UsePalette(p); err != nil {
		a.setStatus("palette: " + err.Error())
		return
	}
	a.Opts.Palette = p.Name
	a.setStatus("palette " + p.Name)
}

func (a *App) save() {
	if a.Opts.Save == nil {
		a.setStatus("saving disabled")
		return
	}
	preset := a.Opts.Preset
	if preset == "" {
		preset = "custom"
	}
	history := append(append([]sim.Record(nil), a.Records...), sim.Record{Step: a.Engine.Steps(), Stats: a.Stats})
	id, err := a.Opts.Save(a.Engine, preset, history)
	if err != nil {
		slog.Error("save failed", "error", err)
		a.setStatus("save failed")
		return
	}
	a.setStatus("saved " + id)
}

func (a *App) screenshot() {
	name := fmt.Sprintf("morphogen_%d.png", time.Now().Unix())
	rl.TakeScreenshot(name)
	a.setStatus("wrote " + name)
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusUntil = time.Now().Add(statusTTL)
}
