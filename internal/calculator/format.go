package calculator

import (
	"math"
	"strconv"
)

// Format renders v with the given number of decimal places.
// A negative precision uses the shortest representation that round-trips,
// switching to exponent form outside [1e-6, 1e21).
func Format(v float64, precision int) string {
	if precision >= 0 {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
