package statechart

import "fmt"

// Source supplies the samples of every series in a chart. Samples must be
// sorted by time, and every Range must be Valid.
type Source[T comparable] interface {
	SeriesCount() int
	Samples(series int) []Sample[T]
	Range(series int) Range
}

// Renderer draws one rectangle of a band.
type Renderer[T comparable] interface {
	Draw(rect ViewRect, hovered bool, value T)
}

// Config holds the pluggable parts of a Chart.
type Config[T comparable] struct {
	// GapFraction of each band is left empty between series. It is clamped
	// to [0,1].
	GapFraction float64
	// Reducer simplifies each band's rectangles before drawing. Nil means
	// no simplification.
	Reducer Reducer[T]
	// Renderer receives every rectangle that survives culling and reduction.
	Renderer Renderer[T]
}

// Hover identifies the series and raw sample under the pointer. Either
// field may be NoIndex.
type Hover struct {
	Series, Item int
}

// NoHover is the hover state while the pointer is outside the chart.
var NoHover = Hover{Series: NoIndex, Item: NoIndex}

type cachedSeries[T comparable] struct {
	samples   []Sample[T]
	rng       Range
	intervals []Interval[T]
}

// Chart draws a Source as stacked bands of state intervals and tracks what
// the pointer is over. The compacted intervals are cached and rebuilt on the
// first read after MarkDirty or SetGapFraction.
type Chart[T comparable] struct {
	source   Source[T]
	gap      float64
	reducer  Reducer[T]
	renderer Renderer[T]

	dirty  bool
	series []cachedSeries[T]

	hover Hover
	// hoverX is the pointer position in model space of the hovered series.
	hoverX float64

	onHover    []func(series int)
	onActivate []func(value T)

	// scratch buffers reused across frames.
	rects  []ViewRect
	values []T
}

func NewChart[T comparable](source Source[T], cfg Config[T]) *Chart[T] {
	reducer := cfg.Reducer
	if reducer == nil {
		reducer = Identity[T]()
	}
	return &Chart[T]{
		source:   source,
		gap:      clamp(cfg.GapFraction, 0, 1),
		reducer:  reducer,
		renderer: cfg.Renderer,
		dirty:    true,
		hover:    NoHover,
	}
}

// MarkDirty invalidates the cached intervals. Call it from the goroutine
// owning the chart whenever the source's data changes.
func (c *Chart[T]) MarkDirty() {
	c.dirty = true
}

// SetGapFraction changes the gap between bands.
func (c *Chart[T]) SetGapFraction(f float64) {
	f = clamp(f, 0, 1)
	if f != c.gap {
		c.gap = f
		c.dirty = true
	}
}

func (c *Chart[T]) GapFraction() float64 {
	return c.gap
}

// OnHoverChanged registers f to be called whenever the hovered series
// changes. f receives NoIndex when the pointer leaves every band.
func (c *Chart[T]) OnHoverChanged(f func(series int)) {
	c.onHover = append(c.onHover, f)
}

// OnItemActivated registers f to be called with the value of an activated
// sample.
func (c *Chart[T]) OnItemActivated(f func(value T)) {
	c.onActivate = append(c.onActivate, f)
}

// refresh rebuilds the cache if it is stale. Every read goes through it.
func (c *Chart[T]) refresh() {
	if !c.dirty {
		return
	}
	n := c.source.SeriesCount()
	if cap(c.series) >= n {
		c.series = c.series[:n]
	} else {
		c.series = make([]cachedSeries[T], n)
	}
	for i := range c.series {
		r := c.source.Range(i)
		if !r.Valid() {
			panic(fmt.Sprintf("statechart: series %d has degenerate range %v", i, r))
		}
		samples := c.source.Samples(i)
		c.series[i] = cachedSeries[T]{
			samples:   samples,
			rng:       r,
			intervals: Compact(samples, r),
		}
	}
	c.dirty = false
}

// SeriesCount returns the number of bands as of the last rebuild.
func (c *Chart[T]) SeriesCount() int {
	c.refresh()
	return len(c.series)
}

// Intervals returns the cached intervals of a series. The slice is shared
// with the chart and must not be modified.
func (c *Chart[T]) Intervals(series int) []Interval[T] {
	c.refresh()
	if series < 0 || series >= len(c.series) {
		return nil
	}
	return c.series[series].intervals
}

// Sample returns a raw sample by the indices reported in Hover.
func (c *Chart[T]) Sample(series, item int) (Sample[T], bool) {
	c.refresh()
	if series < 0 || series >= len(c.series) {
		return Sample[T]{}, false
	}
	samples := c.series[series].samples
	if item < 0 || item >= len(samples) {
		return Sample[T]{}, false
	}
	return samples[item], true
}

func (c *Chart[T]) band(i int) Band {
	return Band{Index: i, Count: len(c.series), GapFraction: c.gap}
}

// Draw culls, scales and reduces every band for a canvas of width x height
// pixels and hands the result to the renderer. Only the horizontal span in
// clip needs to be drawn.
func (c *Chart[T]) Draw(width, height float64, clip Clip) {
	c.refresh()
	if c.renderer == nil || width <= 0 || height <= 0 {
		return
	}
	for i, s := range c.series {
		vp := Viewport{RangeWidth: s.rng.Width(), Width: width, Height: height}
		lo, hi := Visible(vp, s.intervals, clip)
		if lo >= hi {
			continue
		}
		b := c.band(i)
		c.rects = c.rects[:0]
		c.values = c.values[:0]
		for _, iv := range s.intervals[lo:hi] {
			c.rects = append(c.rects, Scale(vp, iv, b))
			c.values = append(c.values, iv.Value)
		}
		rects, values := c.reducer.Reduce(c.rects, c.values)
		checkReduced(rects, values)
		isHoverBand := c.hover.Series == i
		hoverPx := c.hoverX / vp.RangeWidth * width
		for j, r := range rects {
			hovered := isHoverBand && hoverPx >= r.X && hoverPx < r.Right()
			c.renderer.Draw(r, hovered, values[j])
		}
	}
}

// Hover returns the current hover state.
func (c *Chart[T]) Hover() Hover {
	return c.hover
}

// resolve hit-tests a point against the cached data.
func (c *Chart[T]) resolve(x, y, width, height float64) (h Hover, modelX float64) {
	c.refresh()
	h = NoHover
	h.Series = BandAt(y, height, len(c.series))
	if h.Series == NoIndex {
		return h, 0
	}
	s := c.series[h.Series]
	h.Item = ItemAt(s.samples, x, width, s.rng)
	if width > 0 {
		modelX = x / width * s.rng.Width()
	}
	return h, modelX
}

// PointerMoved updates the hover state for a pointer at (x, y) on a canvas of
// width x height pixels. Listeners hear about it only if the hovered series
// changed.
func (c *Chart[T]) PointerMoved(x, y, width, height float64) Hover {
	h, modelX := c.resolve(x, y, width, height)
	c.setHover(h, modelX)
	return h
}

// PointerExited clears the hover state.
func (c *Chart[T]) PointerExited() {
	c.setHover(NoHover, 0)
}

func (c *Chart[T]) setHover(h Hover, modelX float64) {
	prev := c.hover.Series
	c.hover = h
	c.hoverX = modelX
	if h.Series == prev {
		return
	}
	for _, f := range c.onHover {
		f(h.Series)
	}
}

// Activate resolves the point like PointerMoved and notifies the activation
// listeners with the value of the sample found there. It reports whether a
// present sample was hit.
func (c *Chart[T]) Activate(x, y, width, height float64) bool {
	h, _ := c.resolve(x, y, width, height)
	s, ok := c.Sample(h.Series, h.Item)
	if !ok || !s.Present {
		return false
	}
	for _, f := range c.onActivate {
		f(s.Value)
	}
	return true
}
