package statechart

import (
	"math"
	"slices"
)

// NoIndex is returned by hit-testing when nothing is under the pointer.
const NoIndex = -1

// BandTolerance is the distance in pixels beyond the top and bottom edges of
// the canvas that still resolves to the outermost band. It absorbs rounding
// in the host's pointer coordinates.
const BandTolerance = 3

// BandAt returns the index of the band containing the pixel row y on a
// canvas of the given height holding count bands, or NoIndex.
func BandAt(y, height float64, count int) int {
	if count <= 0 || height <= 0 {
		return NoIndex
	}
	normalizedY := 1 - y/height
	i := int(math.Floor(normalizedY * float64(count)))
	switch {
	case i >= 0 && i < count:
		return i
	case i >= count && y >= -BandTolerance:
		// At or just above the top edge.
		return count - 1
	case i < 0 && y <= height+BandTolerance:
		// Just below the bottom edge.
		return 0
	}
	return NoIndex
}

// ItemAt returns the index of the raw sample under pixel column x on a canvas
// of the given width showing r. A pointer exactly on a sample's time selects
// that sample; otherwise the nearest sample to the left wins. NoIndex is
// returned when the pointer lies left of every sample.
func ItemAt[T comparable](samples []Sample[T], x, width float64, r Range) int {
	if len(samples) == 0 || width <= 0 {
		return NoIndex
	}
	modelX := x/width*r.Width() + r.Min
	idx, found := slices.BinarySearchFunc(samples, modelX, func(s Sample[T], t float64) int {
		switch {
		case s.Time < t:
			return -1
		case s.Time > t:
			return 1
		}
		return 0
	})
	if found {
		return idx
	}
	if idx == 0 {
		return NoIndex
	}
	return idx - 1
}
