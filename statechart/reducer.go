package statechart

import "fmt"

// Reducer simplifies the rectangles of one band before they are drawn. The
// rectangles arrive in left-to-right order, paired 1:1 with values.
// Implementations may merge or drop entries but must keep the order and must
// return slices of equal length.
type Reducer[T comparable] interface {
	Reduce(rects []ViewRect, values []T) ([]ViewRect, []T)
}

// ReducerFunc adapts a plain function to the Reducer interface.
type ReducerFunc[T comparable] func(rects []ViewRect, values []T) ([]ViewRect, []T)

func (f ReducerFunc[T]) Reduce(rects []ViewRect, values []T) ([]ViewRect, []T) {
	return f(rects, values)
}

// Identity returns a Reducer that leaves its input untouched.
func Identity[T comparable]() Reducer[T] {
	return ReducerFunc[T](func(rects []ViewRect, values []T) ([]ViewRect, []T) {
		return rects, values
	})
}

// MergeAdjacent returns a Reducer that joins neighbouring rectangles with the
// same value when they touch (within half a pixel), and folds rectangles
// narrower than minWidth into a touching predecessor. The reduction happens
// in place.
func MergeAdjacent[T comparable](minWidth float64) Reducer[T] {
	const slack = 0.5
	return ReducerFunc[T](func(rects []ViewRect, values []T) ([]ViewRect, []T) {
		if len(rects) < 2 {
			return rects, values
		}
		n := 1
		for i := 1; i < len(rects); i++ {
			prev := &rects[n-1]
			r := rects[i]
			touching := r.X-prev.Right() <= slack
			if touching && (values[i] == values[n-1] || r.W < minWidth) {
				prev.W = max(prev.Right(), r.Right()) - prev.X
				continue
			}
			rects[n] = r
			values[n] = values[i]
			n++
		}
		return rects[:n], values[:n]
	})
}

// checkReduced panics if a reducer broke the 1:1 pairing of its output.
// Reducers are configured by the program itself, so a mismatch is a bug.
func checkReduced[T comparable](rects []ViewRect, values []T) {
	if len(rects) != len(values) {
		panic(fmt.Sprintf("statechart: reducer returned %d rects for %d values", len(rects), len(values)))
	}
}
