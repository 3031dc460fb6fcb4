// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// RaisedCosineEdge returns the amplitude envelope for sample i of a tone
// window of n samples with raised-cosine ramps of ramp samples at each
// edge. The envelope is 1.0 across the body of the window and fades
// smoothly to 0 at both ends, limiting spectral leakage between adjacent
// symbol tones.
//
// i outside [0, n) returns 0. ramp is clipped to n/2.
func RaisedCosineEdge(i, n, ramp int) float32 {
	if i < 0 || i >= n {
		return 0
	}
	if ramp > n/2 {
		ramp = n / 2
	}
	if ramp <= 0 {
		return 1
	}

	switch {
	case i < ramp:
		return float32(0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(ramp))))
	case i >= n-ramp:
		return float32(0.5 * (1 - math.Cos(math.Pi*float64(n-1-i)/float64(ramp))))
	default:
		return 1
	}
}
