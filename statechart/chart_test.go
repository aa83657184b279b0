package statechart

import (
	"strings"
	"testing"
)

type fakeSource struct {
	series [][]Sample[string]
	ranges []Range
	reads  int
}

func (f *fakeSource) SeriesCount() int { return len(f.series) }

func (f *fakeSource) Samples(i int) []Sample[string] {
	f.reads++
	return f.series[i]
}

func (f *fakeSource) Range(i int) Range { return f.ranges[i] }

func newFakeSource() *fakeSource {
	return &fakeSource{
		series: [][]Sample[string]{
			{At(0, "A"), At(5, "A"), At(5, "B"), At(10, "B"), Absent[string](10)},
			{At(0, "idle"), At(2, "busy"), Absent[string](4), At(6, "idle")},
		},
		ranges: []Range{{Min: 0, Max: 10}, {Min: 0, Max: 10}},
	}
}

type drawn struct {
	rect    ViewRect
	hovered bool
	value   string
}

type recorder struct {
	calls []drawn
}

func (r *recorder) Draw(rect ViewRect, hovered bool, value string) {
	r.calls = append(r.calls, drawn{rect: rect, hovered: hovered, value: value})
}

func expectPanic(t *testing.T, contains string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("expected a panic mentioning %q", contains)
			return
		}
		if msg, _ := r.(string); !strings.Contains(msg, contains) {
			t.Errorf("expected panic mentioning %q, got %v", contains, r)
		}
	}()
	f()
}

func TestChartCache(t *testing.T) {
	src := newFakeSource()
	c := NewChart[string](src, Config[string]{})
	first := c.Intervals(0)
	readsAfterBuild := src.reads
	second := c.Intervals(0)
	if len(first) != 2 || &first[0] != &second[0] {
		t.Errorf("expected repeated reads to return the cached slice")
	}
	if src.reads != readsAfterBuild {
		t.Errorf("expected no source reads on a cache hit, got %d more", src.reads-readsAfterBuild)
	}
	c.MarkDirty()
	third := c.Intervals(0)
	if src.reads == readsAfterBuild {
		t.Errorf("expected MarkDirty to force a rebuild")
	}
	if len(third) != len(first) || third[0] != first[0] || third[1] != first[1] {
		t.Errorf("expected rebuild of unchanged data to match, got %v and %v", first, third)
	}
	if c.Intervals(5) != nil {
		t.Errorf("expected no intervals for an unknown series")
	}
}

func TestChartGapFraction(t *testing.T) {
	src := newFakeSource()
	c := NewChart[string](src, Config[string]{GapFraction: 1.5})
	if c.GapFraction() != 1 {
		t.Errorf("expected gap fraction to be clamped to 1, got %v", c.GapFraction())
	}
	c.SeriesCount()
	reads := src.reads
	c.SetGapFraction(-1)
	if c.GapFraction() != 0 {
		t.Errorf("expected gap fraction to be clamped to 0, got %v", c.GapFraction())
	}
	c.SeriesCount()
	if src.reads == reads {
		t.Errorf("expected a gap change to invalidate the cache")
	}
	reads = src.reads
	c.SetGapFraction(0)
	c.SeriesCount()
	if src.reads != reads {
		t.Errorf("expected an unchanged gap to keep the cache")
	}
}

func TestChartDegenerateRange(t *testing.T) {
	src := newFakeSource()
	src.ranges[1] = Range{Min: 4, Max: 4}
	c := NewChart[string](src, Config[string]{})
	expectPanic(t, "degenerate range", func() {
		c.Draw(100, 100, Clip{MaxX: 100})
	})
}

func TestChartDraw(t *testing.T) {
	src := newFakeSource()
	rec := &recorder{}
	c := NewChart[string](src, Config[string]{Renderer: rec})
	c.Draw(100, 100, Clip{MinX: 0, MaxX: 100})
	var values []string
	for _, d := range rec.calls {
		values = append(values, d.value)
	}
	if got, expect := strings.Join(values, ","), "A,B,idle,busy,idle"; got != expect {
		t.Errorf("expected drawn values %q, got %q", expect, got)
	}
	if r := rec.calls[0].rect; !rectNear(r, ViewRect{X: 0, W: 50, Y: 50, H: 50}) {
		t.Errorf("expected first rect in the bottom band, got %v", r)
	}

	rec.calls = nil
	c.Draw(100, 100, Clip{MinX: 60, MaxX: 80})
	values = values[:0]
	for _, d := range rec.calls {
		values = append(values, d.value)
	}
	if got, expect := strings.Join(values, ","), "B,idle"; got != expect {
		t.Errorf("expected clipped draw to show %q, got %q", expect, got)
	}
}

func TestChartReducerBreach(t *testing.T) {
	src := newFakeSource()
	broken := ReducerFunc[string](func(rects []ViewRect, values []string) ([]ViewRect, []string) {
		return rects[:len(rects)-1], values
	})
	c := NewChart[string](src, Config[string]{Reducer: broken, Renderer: &recorder{}})
	expectPanic(t, "reducer returned", func() {
		c.Draw(100, 100, Clip{MaxX: 100})
	})
}

func TestChartHover(t *testing.T) {
	src := newFakeSource()
	rec := &recorder{}
	c := NewChart[string](src, Config[string]{Renderer: rec})
	var changes []int
	c.OnHoverChanged(func(series int) {
		changes = append(changes, series)
	})

	h := c.PointerMoved(70, 75, 100, 100)
	if h.Series != 0 || h.Item != 2 {
		t.Errorf("expected hover on series 0 item 2, got %+v", h)
	}
	c.PointerMoved(20, 80, 100, 100)
	c.PointerMoved(90, 60, 100, 100)
	if len(changes) != 1 || changes[0] != 0 {
		t.Errorf("expected one notification for entering band 0, got %v", changes)
	}
	h = c.PointerMoved(30, 10, 100, 100)
	if h.Series != 1 || h.Item != 1 {
		t.Errorf("expected hover on series 1 item 1, got %+v", h)
	}
	c.PointerMoved(50, 500, 100, 100)
	c.PointerMoved(50, 600, 100, 100)
	if c.Hover() != NoHover {
		t.Errorf("expected no hover far outside the canvas, got %+v", c.Hover())
	}
	c.PointerMoved(30, 10, 100, 100)
	c.PointerExited()
	c.PointerExited()
	expect := []int{0, 1, NoIndex, 1, NoIndex}
	if len(changes) != len(expect) {
		t.Fatalf("expected notifications %v, got %v", expect, changes)
	}
	for i := range expect {
		if changes[i] != expect[i] {
			t.Errorf("expected notifications %v, got %v", expect, changes)
			break
		}
	}

	c.PointerMoved(30, 10, 100, 100)
	c.Draw(100, 100, Clip{MaxX: 100})
	var hovered []string
	for _, d := range rec.calls {
		if d.hovered {
			hovered = append(hovered, d.value)
		}
	}
	if len(hovered) != 1 || hovered[0] != "busy" {
		t.Errorf("expected only the busy rect to be hovered, got %v", hovered)
	}
}

func TestChartActivate(t *testing.T) {
	src := newFakeSource()
	c := NewChart[string](src, Config[string]{})
	var activated []string
	c.OnItemActivated(func(v string) {
		activated = append(activated, v)
	})
	if !c.Activate(50, 75, 100, 100) {
		t.Errorf("expected activation at time 5 to hit a sample")
	}
	if c.Activate(45, 10, 100, 100) {
		t.Errorf("expected activation inside an absent span to miss")
	}
	if c.Activate(50, 300, 100, 100) {
		t.Errorf("expected activation outside every band to miss")
	}
	if len(activated) != 1 || activated[0] != "A" {
		t.Errorf("expected one activation of A, got %v", activated)
	}
}

func TestMergeAdjacent(t *testing.T) {
	rects := []ViewRect{
		{X: 0, W: 10},
		{X: 10, W: 10},
		{X: 20, W: 0.2},
		{X: 20.2, W: 5},
		{X: 40, W: 5},
	}
	values := []string{"A", "A", "B", "C", "C"}
	gotRects, gotValues := MergeAdjacent[string](1).Reduce(rects, values)
	checkReduced(gotRects, gotValues)
	if got, expect := strings.Join(gotValues, ","), "A,C,C"; got != expect {
		t.Fatalf("expected values %q, got %q", expect, got)
	}
	if gotRects[0].X != 0 || gotRects[0].W != 20.2 {
		t.Errorf("expected first rect to absorb the sliver, got %v", gotRects[0])
	}
	if gotRects[2].X != 40 {
		t.Errorf("expected the detached rect to stay separate, got %v", gotRects[2])
	}
}
