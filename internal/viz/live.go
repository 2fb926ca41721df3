package viz

import (
	"errors"
	"fmt"
	"image"
	colorpalette "image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/morphogen/internal/analysis"
	"github.com/san-kum/morphogen/internal/config"
	"github.com/san-kum/morphogen/internal/grayscott"
	"github.com/san-kum/morphogen/internal/palette"
	"github.com/san-kum/morphogen/internal/render"
	"github.com/san-kum/morphogen/internal/sim"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 44
	historyCapacity = 120
	recordEvery     = 10
	maxRecords      = 2000
	maxGIFFrames    = 300
	defaultFPS      = 30
	gifPath         = "morphogen.gif"

	// canvasStyle padding, in cells.
	canvasOffsetX = 2
	canvasOffsetY = 1
)

var canvasStyle = lipgloss.NewStyle().Padding(canvasOffsetY, canvasOffsetX)

type TickMsg time.Time

// SaveFunc persists the engine under a preset name and returns a run id.
type SaveFunc func(e *grayscott.Engine, preset string, history []sim.Record) (string, error)

type Options struct {
	Preset        string
	Palette       string
	Theme         string
	StepsPerFrame int
	BrushRadius   float64
	FPS           int
	// Save backs the s key. Nil disables saving.
	Save SaveFunc
}

// Model is the live view: it owns the runner and draws the field each tick.
type Model struct {
	engine        *grayscott.Engine
	runner        *sim.Runner
	renderer      *render.Renderer
	canvas        *Canvas
	opts          Options
	presets       []string
	palettes      []string
	preset        int
	paletteIdx    int
	theme         int
	running       bool
	showHelp      bool
	stats         analysis.Statistics
	entropy       []float64
	avgB          []float64
	records       []sim.Record
	frame         int
	status        string
	width, height int
	recording     bool
	frames        []*image.Paletted
	lastTick      time.Time
	fps           float64
}

// NewModel builds a live view around e. The engine parameters are left as
// they are; opts.Preset only names them.
func NewModel(e *grayscott.Engine, opts Options) (Model, error) {
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = config.DefaultStepsPerFrame
	}
	if opts.BrushRadius <= 0 {
		opts.BrushRadius = config.DefaultBrushRadius
	}
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if opts.Palette == "" {
		opts.Palette = palette.DefaultName
	}

	p, ok := palette.Named(opts.Palette)
	if !ok {
		return Model{}, fmt.Errorf("unknown palette %q", opts.Palette)
	}
	r, err := render.New(p)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		engine:   e,
		runner:   sim.New(e),
		renderer: r,
		opts:     opts,
		presets:  config.ListPresets(),
		palettes: palette.Names(),
		theme:    ThemeIndex(opts.Theme),
		running:  true,
		entropy:  make([]float64, 0, historyCapacity),
		avgB:     make([]float64, 0, historyCapacity),
		records:  make([]sim.Record, 0, 64),
	}
	m.preset = indexOf(m.presets, opts.Preset)
	m.paletteIdx = indexOf(m.palettes, opts.Palette)
	m.resize(width, height)
	m.sample()
	return m, nil
}

func indexOf(list []string, name string) int {
	for i, s := range list {
		if s == name {
			return i
		}
	}
	return -1
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		m.advance(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "n":
		if !m.running {
			m.runner.Frame(1)
			m.sample()
		}
	case "c":
		m.engine.Clear()
		m.resetHistory()
		m.status = "cleared"
	case "r":
		m.engine.Randomize()
		m.status = "randomized"
	case "p":
		m.cyclePreset(1)
	case "P":
		m.cyclePreset(-1)
	case "l":
		m.cyclePalette()
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
	case "+", "=":
		m.opts.StepsPerFrame = min(m.opts.StepsPerFrame*2, 256)
	case "-", "_":
		m.opts.StepsPerFrame = max(m.opts.StepsPerFrame/2, 1)
	case "]":
		m.opts.BrushRadius = min(m.opts.BrushRadius+2, 100)
	case "[":
		m.opts.BrushRadius = max(m.opts.BrushRadius-2, 1)
	case "s":
		m.save()
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.showHelp || msg.Button != tea.MouseButtonLeft {
		return
	}
	if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion {
		return
	}
	x, y, ok := m.canvas.GridPoint(msg.X-canvasOffsetX, msg.Y-canvasOffsetY, m.engine.Width(), m.engine.Height())
	if !ok {
		return
	}
	m.runner.Queue().Push(x, y, m.opts.BrushRadius)
}

func (m *Model) advance(now time.Time) {
	if !m.lastTick.IsZero() {
		if dt := now.Sub(m.lastTick).Seconds(); dt > 0 {
			m.fps = 0.9*m.fps + 0.1/dt
		}
	}
	m.lastTick = now

	if m.running {
		m.runner.Frame(m.opts.StepsPerFrame)
	} else {
		m.runner.Frame(0)
	}
	m.frame++
	m.sample()

	if m.recording && m.frame%2 == 0 {
		m.captureFrame()
	}
}

// sample refreshes statistics and the rolling charts.
func (m *Model) sample() {
	m.stats = m.runner.Stats()
	m.entropy = appendCapped(m.entropy, m.stats.Entropy, historyCapacity)
	m.avgB = appendCapped(m.avgB, m.stats.AvgB, historyCapacity)
	if m.frame%recordEvery == 0 {
		rec := sim.Record{Step: m.engine.Steps(), Stats: m.stats}
		if n := len(m.records); n == 0 || m.records[n-1].Step != rec.Step {
			m.records = append(m.records, rec)
			if len(m.records) > maxRecords {
				m.records = m.records[1:]
			}
		}
	}
}

func appendCapped(s []float64, v float64, n int) []float64 {
	s = append(s, v)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

func (m *Model) resetHistory() {
	m.entropy = m.entropy[:0]
	m.avgB = m.avgB[:0]
	m.records = m.records[:0]
	m.frame = 0
	m.sample()
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	cols, rows := Fit(m.engine.Width(), m.engine.Height(), w-panelWidth-2*canvasOffsetX-2, h-2*canvasOffsetY)
	m.canvas = NewCanvas(cols, rows)
}

func (m *Model) cyclePreset(dir int) {
	if len(m.presets) == 0 {
		return
	}
	m.preset = (m.preset + dir + len(m.presets)) % len(m.presets)
	name := m.presets[m.preset]
	p := config.GetPreset(name)
	m.engine.SetParameters(p.Feed, p.Kill)
	m.opts.Preset = name
	m.status = "preset " + name
}

func (m *Model) cyclePalette() {
	if len(m.palettes) == 0 {
		return
	}
	m.paletteIdx = (m.paletteIdx + 1) % len(m.palettes)
	p, _ := palette.Named(m.palettes[m.paletteIdx])
	if err := m.renderer.UsePalette(p); err != nil {
		m.status = "palette: " + err.Error()
		return
	}
	m.opts.Palette = p.Name
	m.status = "palette " + p.Name
}

func (m *Model) save() {
	if m.opts.Save == nil {
		m.status = "saving disabled"
		return
	}
	history := append(append([]sim.Record(nil), m.records...), sim.Record{Step: m.engine.Steps(), Stats: m.stats})
	if n := len(history); n > 1 && history[n-2].Step == history[n-1].Step {
		history = history[:n-1]
	}
	id, err := m.opts.Save(m.engine, m.presetName(), history)
	if err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.status = "saved " + id
}

func (m *Model) presetName() string {
	if m.opts.Preset == "" {
		return "custom"
	}
	return m.opts.Preset
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0, maxGIFFrames)
		m.status = "recording"
		return
	}
	m.recording = false
	if err := m.saveGIF(gifPath); err != nil {
		m.status = "gif: " + err.Error()
	} else {
		m.status = fmt.Sprintf("wrote %s (%d frames)", gifPath, len(m.frames))
	}
	m.frames = nil
}

func (m *Model) captureFrame() {
	if len(m.frames) >= maxGIFFrames {
		return
	}
	m.renderer.Render(m.engine)
	img := m.renderer.Image()
	frame := image.NewPaletted(img.Bounds(), colorpalette.Plan9)
	draw.FloydSteinberg.Draw(frame, frame.Bounds(), img, image.Point{})
	m.frames = append(m.frames, frame)
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return errors.New("no frames captured")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 4)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// View renders the TUI interface.
func (m Model) View() string {
	pixels := m.renderer.Render(m.engine)
	canvasView := canvasStyle.Render(m.canvas.Render(pixels, m.engine.Width(), m.engine.Height()))

	theme := Themes[m.theme]
	st := theme.styles()

	var s strings.Builder
	s.WriteString(GradientText("MORPHOGEN", theme.Primary, theme.Secondary) + "\n\n")

	switch {
	case m.recording:
		s.WriteString(st.recording.Render(fmt.Sprintf("● REC %d", len(m.frames))))
	case m.running:
		s.WriteString(st.running.Render("RUNNING"))
	default:
		s.WriteString(st.paused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	params := m.engine.Parameters()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	desc := ""
	if p := config.GetPreset(m.opts.Preset); p != nil {
		desc = " · " + p.Description
	}
	row("Preset", m.presetName()+desc)
	row("Palette", m.renderer.PaletteName())
	row("F / k", fmt.Sprintf("%.4f / %.4f", params.Feed, params.Kill))
	row("Step", fmt.Sprintf("%d", m.engine.Steps()))
	row("Speed", fmt.Sprintf("%d steps/frame  %.0f fps", m.opts.StepsPerFrame, m.fps))
	row("Brush", fmt.Sprintf("%.0f", m.opts.BrushRadius))

	s.WriteString("\n" + Separator(panelWidth-6, st.label.UnsetWidth()) + "\n\n")
	row("A", fmt.Sprintf("%.3f … %.3f  avg %.3f", m.stats.MinA, m.stats.MaxA, m.stats.AvgA))
	row("B", fmt.Sprintf("%.3f … %.3f  avg %.3f", m.stats.MinB, m.stats.MaxB, m.stats.AvgB))
	row("Entropy", fmt.Sprintf("%.3f bits", m.stats.Entropy))
	row("avg B", SparklineChart(m.avgB, 24))

	if len(m.entropy) > 1 {
		chart := asciigraph.Plot(m.entropy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Entropy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	if m.status != "" {
		s.WriteString("\n" + st.active.Render(m.status) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause C:Clear R:Rand Q:Quit\nP:Preset L:Palette T:Theme ?:Help\nS:Save G:GIF +/-:Speed [/]:Brush"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  N        - Step once while paused   ║
║  C        - Clear field              ║
║  R        - Randomize field          ║
║  P / ⇧P   - Next/previous preset     ║
║  L        - Next palette             ║
║  T        - Cycle themes             ║
║  + / -    - Steps per frame          ║
║  [ / ]    - Brush radius             ║
║  S        - Save run                 ║
║  G        - Toggle GIF recording     ║
║  Mouse    - Paint B                  ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
