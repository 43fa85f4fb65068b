package mathutil

import "math"

// Tau is one full turn in radians.
const Tau = 2 * math.Pi

// Sign returns -1, 0 or 1 according to the sign of v.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
