// Package grayscott provides the Gray-Scott reaction-diffusion engine.
//
// Two concentration fields are stepped on a fixed 2D grid:
//
//   - [Grid]: the A (substrate) and B (activator) fields plus their next buffers
//   - [Engine]: owns a Grid and exposes Seed, Step, Clear, Randomize and SetParameters
//   - [Params]: feed/kill rates, diffusion rates and the time step
//
// # Example
//
//	eng := grayscott.NewEngine(200, 200, grayscott.DefaultParams())
//	eng.Seed(100, 100, 10)
//	eng.StepN(100)
//	a, b := eng.A(), eng.B()
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. Every mutation (including Seed) must
// happen on the goroutine that calls Step; see sim.SeedQueue for forwarding
// brush input from other goroutines.
package grayscott
