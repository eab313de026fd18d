package gesture

import "math"

// NormalizeAngle maps a into [0, 360).
func NormalizeAngle(a float64) float64 {
	v := math.Mod(a, 360)
	if v < 0 {
		v += 360
	}
	if v >= 360 {
		v = 0
	}
	return v
}

// AbsAngleDiff is the shortest circular distance between a and b, in [0, 180].
func AbsAngleDiff(a, b float64) float64 {
	d := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	return math.Min(d, 360-d)
}

// SignedAngleDiff is the shortest signed arc from a to b, in (-180, 180].
// For example a=350, b=10 gives +20 and a=10, b=350 gives -20.
func SignedAngleDiff(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}
