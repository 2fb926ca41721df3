package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/morphogen/internal/config"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// StartFunc builds the live view for a preset chosen in the launcher.
type StartFunc func(preset string) (Model, error)

// Launcher lists the presets and hands over to a live Model once one is
// picked.
type Launcher struct {
	presets       []string
	cursor        int
	start         StartFunc
	live          *Model
	err           error
	width, height int
}

func NewLauncher(start StartFunc) Launcher {
	presets := config.ListPresets()
	return Launcher{
		presets: presets,
		cursor:  max(indexOf(presets, config.DefaultPreset), 0),
		start:   start,
		width:   width,
		height:  height,
	}
}

func (l Launcher) Init() tea.Cmd { return nil }

func (l Launcher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.live != nil {
		next, cmd := l.live.Update(msg)
		live := next.(Model)
		l.live = &live
		return l, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width, l.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return l, tea.Quit
		case "up", "k":
			l.cursor = (l.cursor - 1 + len(l.presets)) % len(l.presets)
		case "down", "j":
			l.cursor = (l.cursor + 1) % len(l.presets)
		case "enter", " ":
			m, err := l.start(l.presets[l.cursor])
			if err != nil {
				l.err = err
				return l, nil
			}
			m.resize(l.width, l.height)
			l.live = &m
			return l, m.Init()
		}
	}
	return l, nil
}

func (l Launcher) View() string {
	if l.live != nil {
		return l.live.View()
	}

	var b strings.Builder
	b.WriteString("\n  " + cyan.Bold(true).Render("morphogen") + dim.Render("  gray-scott reaction-diffusion") + "\n\n")
	for i, name := range l.presets {
		p := config.Presets[name]
		line := fmt.Sprintf("%-10s %s", name, dim.Render(fmt.Sprintf("F=%.4f k=%.4f  %s", p.Feed, p.Kill, p.Description)))
		if i == l.cursor {
			b.WriteString("  " + magenta.Render("▸ ") + white.Bold(true).Render(line) + "\n")
		} else {
			b.WriteString("    " + white.Render(line) + "\n")
		}
	}
	if l.err != nil {
		b.WriteString("\n  " + red.Render(l.err.Error()) + "\n")
	}
	b.WriteString("\n  " + dim.Render("↑/↓ select · enter start · q quit") + "\n")
	return b.String()
}
