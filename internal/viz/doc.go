// Package viz is the terminal front end for a Gray-Scott simulation.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Launcher]: preset picker that opens a live view
//   - [Model]: live view with the field, statistics and an entropy chart
//   - [Canvas]: half-block renderer, two grid pixels per terminal cell
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	C     - Clear to the empty state
//	R     - Randomize
//	P     - Next preset (shift for previous)
//	L     - Next palette
//	T     - Cycle color themes
//	+/-   - Steps per frame
//	[/]   - Brush radius
//	S     - Save the run
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// Left mouse button paints B into the field.
package viz
