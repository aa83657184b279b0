package statechart

import (
	"golang.org/x/exp/constraints"
)

// Band is the vertical slot of one series. Band 0 sits at the bottom of the
// canvas and higher indices stack upward.
type Band struct {
	Index, Count int
	// GapFraction is the share of the band left empty, split evenly above
	// and below the rectangles.
	GapFraction float64
}

// Top returns the normalized distance of the band's upper edge from the top
// of the canvas.
func (b Band) Top() float64 {
	n := float64(b.Count)
	return 1 - float64(b.Index+1)/n + b.GapFraction/(2*n)
}

// Height returns the normalized height of the band's rectangles.
func (b Band) Height() float64 {
	n := float64(b.Count)
	return 1/n - b.GapFraction/n
}

// ViewRect is a rectangle in device pixels.
type ViewRect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the rectangle's right edge.
func (r ViewRect) Right() float64 {
	return r.X + r.W
}

// Clip is the horizontal pixel span that is actually visible.
type Clip struct {
	MinX, MaxX float64
}

// Viewport maps series-local model space onto a canvas of Width x Height
// pixels. It is recomputed every frame.
type Viewport struct {
	RangeWidth    float64
	Width, Height float64
}

// Scale returns the pixel rectangle covered by iv within band b.
func Scale[T comparable](v Viewport, iv Interval[T], b Band) ViewRect {
	return ViewRect{
		X: iv.Start / v.RangeWidth * v.Width,
		W: (iv.End - iv.Start) / v.RangeWidth * v.Width,
		Y: b.Top() * v.Height,
		H: b.Height() * v.Height,
	}
}

// ModelX maps a pixel x coordinate back into series-local model space.
func (v Viewport) ModelX(x float64) float64 {
	return x / v.Width * v.RangeWidth
}

// Clipped reports whether c hides any part of the canvas horizontally.
func (v Viewport) Clipped(c Clip) bool {
	return c.MinX > 0 || c.MaxX < v.Width
}

// clamp limits v to [lo, hi].
func clamp[N constraints.Integer | constraints.Float](v, lo, hi N) N {
	return min(max(v, lo), hi)
}
