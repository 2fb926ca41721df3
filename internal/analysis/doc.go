// Package analysis provides read-only measurements of a Gray-Scott grid.
//
//   - [Compute]: min/max/mean of both fields and the Shannon entropy of B
//   - [Spectrum]: radially averaged power spectrum of B and the dominant
//     pattern wavelength
//
// Nothing here mutates the fields it is given.
package analysis
