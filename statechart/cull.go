package statechart

import "sort"

// lowerBound returns the index of the first interval that does not end
// before t. Intervals ending exactly at t are included.
func lowerBound[T comparable](ivs []Interval[T], t float64) int {
	return sort.Search(len(ivs), func(i int) bool {
		return ivs[i].End >= t
	})
}

// upperBound returns the index of the first interval that starts after t.
func upperBound[T comparable](ivs []Interval[T], t float64) int {
	return sort.Search(len(ivs), func(i int) bool {
		return ivs[i].Start > t
	})
}

// Cull returns the half-open index range [lo, hi) of the sorted,
// non-overlapping intervals that intersect [queryStart, queryEnd].
func Cull[T comparable](ivs []Interval[T], queryStart, queryEnd float64) (lo, hi int) {
	lo = lowerBound(ivs, queryStart)
	hi = upperBound(ivs, queryEnd)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Visible returns the index range of ivs that intersect the clipped portion
// of the viewport. When nothing is clipped the whole slice is visible and no
// search happens.
func Visible[T comparable](v Viewport, ivs []Interval[T], c Clip) (lo, hi int) {
	if !v.Clipped(c) {
		return 0, len(ivs)
	}
	return Cull(ivs, v.ModelX(c.MinX), v.ModelX(c.MaxX))
}
