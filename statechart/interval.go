// Package statechart turns streams of irregular state-change samples into
// sorted, non-overlapping intervals and provides the per-frame geometry for
// drawing them as horizontal bands: viewport culling, scaling into pixel
// space, pluggable simplification and hit-testing.
//
// Nothing in this package is safe for concurrent use. A Chart is meant to be
// owned by the goroutine that runs the UI event loop.
package statechart

import "fmt"

// Sample is a single observation of a series' state at a point in time. A
// sample that is not Present marks the end of the previous state without
// starting a new one.
type Sample[T comparable] struct {
	Time    float64
	Value   T
	Present bool
}

// At returns a present sample.
func At[T comparable](t float64, v T) Sample[T] {
	return Sample[T]{Time: t, Value: v, Present: true}
}

// Absent returns a sample marking the absence of any state from t onward.
func Absent[T comparable](t float64) Sample[T] {
	return Sample[T]{Time: t}
}

// same reports whether two samples describe the same state.
func (s Sample[T]) same(o Sample[T]) bool {
	if s.Present != o.Present {
		return false
	}
	return !s.Present || s.Value == o.Value
}

// Range is the visible time extent of a series.
type Range struct {
	Min, Max float64
}

func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Valid reports whether the range has a positive width.
func (r Range) Valid() bool {
	return r.Max > r.Min
}

func (r Range) String() string {
	return fmt.Sprintf("[%g,%g]", r.Min, r.Max)
}

// Interval is one compacted run of a single state. Start and End are offsets
// from the Min of the Range the interval was compacted against.
type Interval[T comparable] struct {
	Start, End float64
	Value      T
}

func (iv Interval[T]) Width() float64 {
	return iv.End - iv.Start
}

// Compact walks samples (sorted by time) once and returns the runs of equal
// state that fall within r. Runs that begin before r.Min are clipped to it,
// runs still open at r.Max (or when the walk stops there) end at r.Max.
// Absent samples end a run without starting one.
//
// The caller must ensure r.Valid().
func Compact[T comparable](samples []Sample[T], r Range) []Interval[T] {
	var (
		out []Interval[T]
		// open is the run in progress, if any.
		open     bool
		openAt   float64
		openVal  T
		last     Sample[T]
		retained bool
	)
	emit := func(end float64) {
		start := max(openAt, r.Min)
		if start < end {
			out = append(out, Interval[T]{
				Start: start - r.Min,
				End:   end - r.Min,
				Value: openVal,
			})
		}
	}
	for _, s := range samples {
		if retained && last.same(s) {
			continue
		}
		if s.Time >= r.Max {
			break
		}
		last, retained = s, true
		if open && s.Time >= r.Min {
			emit(s.Time)
		}
		open = s.Present
		openAt = s.Time
		openVal = s.Value
	}
	if open {
		emit(r.Max)
	}
	return out
}
