package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders a float the way a browser stringifies numbers:
// shortest round-trip digits, plain notation for 1e-6 <= |f| < 1e21 and
// exponent notation otherwise. Non-finite values render as Infinity,
// -Infinity and NaN; negative zero renders as "0".
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

// ParseNumber parses an operand string. Anything that is not a number
// yields NaN; out-of-range magnitudes saturate to ±Inf. The literals
// produced by FormatNumber (Infinity, -Infinity, NaN) parse back.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return f
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		return f
	}
	return math.NaN()
}
