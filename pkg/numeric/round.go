package numeric

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// exactDigits is enough fractional digits to print any float64 exactly
const exactDigits = 1074

// Round rounds x to places decimal digits, ties to even, on the exact
// binary value of x: 0.025 (stored just above) rounds to 0.03, 0.015
// (stored just below) to 0.01, and 0.125 (exact) to 0.12.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	d := decimal.RequireFromString(strconv.FormatFloat(x, 'f', exactDigits, 64))
	v, _ := d.RoundBank(places).Float64()
	return v
}

// Round2 rounds to two decimal digits
func Round2(x float64) float64 {
	return Round(x, 2)
}

// Clamp bounds x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
