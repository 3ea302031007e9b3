package core

import "math"

// ToLinear converts a dB value to linear units. Negative infinity maps to
// exactly zero.
func ToLinear(db float64) float64 {
	if math.IsInf(db, -1) {
		return 0
	}
	return math.Pow(10, db/10)
}

// ToDB converts a linear value to dB. Zero (and anything non-positive) maps
// to negative infinity.
func ToDB(linear float64) float64 {
	if linear <= 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(linear)
}

// AddPowersDB returns the dB value of the linear sum of two uncorrelated
// signals. When either side is -Inf the other is returned unchanged, so a
// single contribution survives without a lossy round trip through linear
// space.
func AddPowersDB(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	return ToDB(ToLinear(a) + ToLinear(b))
}
