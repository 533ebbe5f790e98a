package claims

import "math"

// centTolerance is the fixed epsilon for all sum-reconciliation checks.
// Amounts are rounded to 2 places at every assignment, so anything past a
// cent is a real inconsistency, not float noise.
const centTolerance = 0.01

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= centTolerance
}
