package safe

import "math"

// Div performs float64 division, returning 0 when the denominator is zero
// or the result is not finite. Market data occasionally carries zeroed
// fields; decision math must never produce NaN or Inf.
func Div(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	r := a / b
	if !IsFinite(r) {
		return 0
	}
	return r
}

// Pct returns (a-b)/b*100, guarded like Div.
func Pct(a, b float64) float64 {
	return Div(a-b, b) * 100
}

// IsFinite reports whether f is neither NaN nor Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Positive reports whether f is a finite value greater than zero.
func Positive(f float64) bool {
	return IsFinite(f) && f > 0
}
