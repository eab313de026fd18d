package gesture

import "sort"

const (
	// DefaultMinGap is the minimum angle between two points of one dial.
	DefaultMinGap = 30.0
	// MaxPasses bounds the relaxation loop of AutoSeparate.
	MaxPasses = 20

	epsilon = 1e-9
)

// Separation reports how AutoSeparate reached its result.
type Separation struct {
	// Passes is the number of relaxation passes run, including the final
	// pass that found nothing to adjust.
	Passes int `json:"passes"`
	// Adjustments counts the pairs that were re-placed.
	Adjustments int `json:"adjustments"`
	// Stable is set when no two points of the dial are closer than the gap.
	Stable bool `json:"stable"`
	// Resolved is set when relaxation did not converge and the points were
	// re-spread in their original circular order instead.
	Resolved bool `json:"resolved"`
}

// AutoSeparate moves the points of one dial apart until every pair is at
// least minGap degrees apart. Only AngleDeg of points on circle is changed.
//
// Each pass visits the dial's points sorted by angle and, for every pair
// closer than minGap, re-places both at minGap/2 either side of their arc
// midpoint. If a pass changes nothing the dial is stable. When MaxPasses are
// exhausted and the gap can still fit n times around the circle, the points
// are re-spread from their input angles keeping their circular order. An
// over-full dial is left where the last pass put it.
func AutoSeparate(points []Point, circle int, minGap float64) Separation {
	var idx []int
	for i := range points {
		if points[i].Circle == circle {
			idx = append(idx, i)
		}
	}
	if len(idx) <= 1 || minGap <= 0 {
		return Separation{Stable: true}
	}

	original := make([]float64, len(points))
	for _, i := range idx {
		original[i] = NormalizeAngle(points[i].AngleDeg)
	}

	var res Separation
	for res.Passes < MaxPasses {
		res.Passes++
		if !relax(points, idx, minGap, &res) {
			res.Stable = true
			return res
		}
	}

	if separated(points, idx, minGap) {
		res.Stable = true
		return res
	}
	if float64(len(idx))*minGap <= 360+epsilon {
		spread(points, idx, original, minGap)
		res.Stable = true
		res.Resolved = true
	}
	return res
}

// relax runs one pass and reports whether it adjusted anything.
func relax(points []Point, idx []int, minGap float64, res *Separation) bool {
	order := append([]int(nil), idx...)
	sort.SliceStable(order, func(a, b int) bool {
		return points[order[a]].AngleDeg < points[order[b]].AngleDeg
	})

	half := minGap / 2
	adjusted := false
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			p1, p2 := &points[order[i]], &points[order[j]]
			a, b := NormalizeAngle(p1.AngleDeg), NormalizeAngle(p2.AngleDeg)
			if AbsAngleDiff(a, b) >= minGap-epsilon {
				continue
			}

			signed := SignedAngleDiff(a, b)
			mid := NormalizeAngle(a + signed/2)
			left, right := NormalizeAngle(mid-half), NormalizeAngle(mid+half)
			if signed > 0 {
				p2.AngleDeg, p1.AngleDeg = left, right
			} else {
				p1.AngleDeg, p2.AngleDeg = left, right
			}
			adjusted = true
			res.Adjustments++
		}
	}
	return adjusted
}

func separated(points []Point, idx []int, minGap float64) bool {
	for i := 0; i < len(idx); i++ {
		for j := i + 1; j < len(idx); j++ {
			if AbsAngleDiff(points[idx[i]].AngleDeg, points[idx[j]].AngleDeg) < minGap-1e-6 {
				return false
			}
		}
	}
	return true
}

// spread places the points at least minGap apart, as close as possible to
// their original angles, in their original circular order. It starts after
// the widest empty arc, pushes crowded points forward, then pulls the tail
// back so the wrap-around gap also holds.
func spread(points []Point, idx []int, original []float64, minGap float64) {
	n := len(idx)
	order := append([]int(nil), idx...)
	sort.SliceStable(order, func(a, b int) bool {
		return original[order[a]] < original[order[b]]
	})

	widest, start := -1.0, 0
	for k := 0; k < n; k++ {
		cur, next := original[order[k]], original[order[(k+1)%n]]
		gap := next - cur
		if k == n-1 {
			gap += 360
		}
		if gap > widest {
			widest, start = gap, (k+1)%n
		}
	}

	x := make([]float64, n)
	base := original[order[start]]
	for m := 0; m < n; m++ {
		a := original[order[(start+m)%n]]
		if a < base {
			a += 360
		}
		x[m] = a
	}

	for m := 1; m < n; m++ {
		if x[m] < x[m-1]+minGap {
			x[m] = x[m-1] + minGap
		}
	}
	if limit := x[0] + 360 - minGap; x[n-1] > limit {
		x[n-1] = limit
	}
	for m := n - 2; m >= 0; m-- {
		if x[m] > x[m+1]-minGap {
			x[m] = x[m+1] - minGap
		}
	}

	for m := 0; m < n; m++ {
		points[order[(start+m)%n]].AngleDeg = NormalizeAngle(x[m])
	}
}
