package gui

import (
	"fmt"
	"image/color"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/morphogen/internal/config"
	"github.com/san-kum/morphogen/internal/palette"
)

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawField()
	a.drawBrush()
	if a.ShowHUD {
		a.DrawHUD()
	}

	rl.EndDrawing()
}

// drawField uploads the current frame and stretches it over the field area.
func (a *App) drawField() {
	pixels := a.Renderer.Render(a.Engine)
	for i, px := range pixels {
		r, g, b, al := palette.Unpack(px)
		a.colors[i] = color.RGBA{R: r, G: g, B: b, A: al}
	}
	rl.UpdateTexture(a.tex, a.colors)

	w, h := float32(a.Engine.Width()), float32(a.Engine.Height())
	s := float32(a.Opts.Scale)
	src := rl.Rectangle{X: 0, Y: 0, Width: w, Height: h}
	dst := rl.Rectangle{X: 0, Y: 0, Width: w * s, Height: h * s}
	rl.DrawTexturePro(a.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

func (a *App) drawBrush() {
	mouse := rl.GetMousePosition()
	if _, _, ok := a.toGrid(mouse); !ok {
		return
	}
	rl.DrawCircleLines(int32(mouse.X), int32(mouse.Y), float32(a.Opts.BrushRadius)*float32(a.Opts.Scale), ColBrush)
}

func (a *App) DrawHUD() {
	x := a.Engine.Width()*a.Opts.Scale + 20
	y := 20

	a.drawText("morphogen", x, y, 24, ColSelect)
	status, col := "RUNNING", ColSelect
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, x+180, y+6, 14, col)
	y += 44

	params := a.Engine.Parameters()
	preset := a.Opts.Preset
	if preset == "" {
		preset = "custom"
	}
	lines := []string{
		fmt.Sprintf("preset   %s", preset),
		fmt.Sprintf("palette  %s", a.Renderer.PaletteName()),
		fmt.Sprintf("F        %.4f", params.Feed),
		fmt.Sprintf("k        %.4f", params.Kill),
		fmt.Sprintf("step     %d", a.Engine.Steps()),
		fmt.Sprintf("speed    %d/frame", a.Opts.StepsPerFrame),
		fmt.Sprintf("brush    %.0f", a.Opts.BrushRadius),
	}
	for _, l := range lines {
		a.drawText(l, x, y, 16, ColText)
		y += 22
	}
	if p := config.GetPreset(a.Opts.Preset); p != nil {
		a.drawText(p.Description, x, y, 14, ColTextDim)
		y += 22
	}

	y += 12
	stats := []string{
		fmt.Sprintf("A  %.3f..%.3f  avg %.3f", a.Stats.MinA, a.Stats.MaxA, a.Stats.AvgA),
		fmt.Sprintf("B  %.3f..%.3f  avg %.3f", a.Stats.MinB, a.Stats.MaxB, a.Stats.AvgB),
		fmt.Sprintf("H  %.3f bits", a.Stats.Entropy),
	}
	for _, l := range stats {
		a.drawText(l, x, y, 14, ColAccent)
		y += 20
	}

	a.DrawTelemetry(x, y+10, panelWidth-40, 60)

	if a.status != "" && time.Now().Before(a.statusUntil) {
		a.drawText(a.status, x, int(rl.GetScreenHeight())-120, 14, ColSelect)
	}

	h := int(rl.GetScreenHeight())
	a.drawText("[SPC] PAUSE [N] STEP [C] CLEAR", x, h-90, 12, ColTextDim)
	a.drawText("[R] RANDOM [P] PRESET [L] PALETTE", x, h-74, 12, ColTextDim)
	a.drawText("[S] SAVE [F12] SHOT [+/-] SPEED", x, h-58, 12, ColTextDim)
	a.drawText("[WHEEL] BRUSH [H] HUD [Q] QUIT", x, h-42, 12, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), x, h-22, 12, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, col rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, col)
}

// DrawTelemetry plots the entropy history in the given box.
func (a *App) DrawTelemetry(rectX, rectY, width, height int) {
	if len(a.Telemetry) < 2 {
		return
	}

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText("entropy", rectX, rectY+height+4, 12, ColTextDim)
}
