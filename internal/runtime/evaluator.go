package runtime

import (
	"math"

	"github.com/aretw0/calcpad/pkg/domain"
)

// precision is the scale used to round results to 8 fractional digits.
const precision = 1e8

// Evaluate applies a binary operator with IEEE-754 semantics.
// Division and modulo by zero yield ±Inf or NaN rather than an error.
// An unknown operator yields NaN.
func Evaluate(a, b float64, op domain.Operator) float64 {
	switch op {
	case domain.OpAdd:
		return a + b
	case domain.OpSubtract:
		return a - b
	case domain.OpMultiply:
		return a * b
	case domain.OpDivide:
		return a / b
	case domain.OpModulo:
		return math.Mod(a, b)
	}
	return math.NaN()
}

// Round computes round(f*1e8)/1e8 with ties toward +Inf, hiding binary
// floating-point noise (0.1+0.2 becomes 0.3). A finite f whose scaled value
// overflows becomes ±Inf. Non-finite values pass through.
func Round(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	scaled := f * precision
	r := math.Floor(scaled)
	// scaled+0.5 would itself round when |scaled| >= 2^52.
	if scaled-r >= 0.5 {
		r++
	}
	return r / precision
}
