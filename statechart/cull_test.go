package statechart

import (
	"math"
	"testing"
)

func cullFixture() []Interval[int] {
	return []Interval[int]{
		{Start: 0, End: 2, Value: 1},
		{Start: 2, End: 5, Value: 2},
		{Start: 5, End: 6, Value: 3},
		{Start: 8, End: 10, Value: 4},
	}
}

func TestCull(t *testing.T) {
	ivs := cullFixture()
	for _, tc := range []struct {
		name       string
		start, end float64
		lo, hi     int
	}{
		{name: "everything", start: 0, end: 10, lo: 0, hi: 4},
		{name: "wider than data", start: -10, end: 20, lo: 0, hi: 4},
		{name: "strictly inside one", start: 3, end: 4, lo: 1, hi: 2},
		{name: "spanning two", start: 4, end: 5.5, lo: 1, hi: 3},
		{name: "inside gap", start: 6.5, end: 7.5, lo: 3, hi: 3},
		{name: "shared edge includes both", start: 2, end: 2, lo: 0, hi: 2},
		{name: "right of everything", start: 11, end: 12, lo: 4, hi: 4},
		{name: "left of everything", start: -3, end: -1, lo: 0, hi: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			lo, hi := Cull(ivs, tc.start, tc.end)
			if lo != tc.lo || hi != tc.hi {
				t.Errorf("expected [%d,%d), got [%d,%d)", tc.lo, tc.hi, lo, hi)
			}
		})
	}
}

func TestCullEmpty(t *testing.T) {
	lo, hi := Cull[int](nil, 0, 10)
	if lo != 0 || hi != 0 {
		t.Errorf("expected [0,0), got [%d,%d)", lo, hi)
	}
}

func TestVisible(t *testing.T) {
	ivs := cullFixture()
	vp := Viewport{RangeWidth: 10, Width: 100, Height: 50}
	lo, hi := Visible(vp, ivs, Clip{MinX: 0, MaxX: 100})
	if lo != 0 || hi != len(ivs) {
		t.Errorf("expected unclipped viewport to show [0,%d), got [%d,%d)", len(ivs), lo, hi)
	}
	lo, hi = Visible(vp, ivs, Clip{MinX: -5, MaxX: 150})
	if lo != 0 || hi != len(ivs) {
		t.Errorf("expected oversized clip to show [0,%d), got [%d,%d)", len(ivs), lo, hi)
	}
	lo, hi = Visible(vp, ivs, Clip{MinX: 30, MaxX: 45})
	if lo != 1 || hi != 2 {
		t.Errorf("expected clip inside the second interval to show [1,2), got [%d,%d)", lo, hi)
	}
	lo, hi = Visible(vp, ivs, Clip{MinX: 55, MaxX: 100})
	if lo != 2 || hi != 4 {
		t.Errorf("expected right half to show [2,4), got [%d,%d)", lo, hi)
	}
}

func TestScale(t *testing.T) {
	vp := Viewport{RangeWidth: 10, Width: 200, Height: 100}
	b := Band{Index: 0, Count: 2, GapFraction: 0.2}
	got := Scale(vp, Interval[int]{Start: 2.5, End: 5}, b)
	expect := ViewRect{X: 50, W: 50, Y: 55, H: 40}
	if !rectNear(got, expect) {
		t.Errorf("expected %v, got %v", expect, got)
	}
	b.Index = 1
	got = Scale(vp, Interval[int]{Start: 0, End: 10}, b)
	expect = ViewRect{X: 0, W: 200, Y: 5, H: 40}
	if !rectNear(got, expect) {
		t.Errorf("expected %v, got %v", expect, got)
	}
}

func TestBandGeometry(t *testing.T) {
	for count := 1; count < 6; count++ {
		for _, gap := range []float64{0, 0.1, 0.5} {
			prevTop := 1.0
			for i := 0; i < count; i++ {
				b := Band{Index: i, Count: count, GapFraction: gap}
				bottom := b.Top() + b.Height()
				if bottom > prevTop+1e-9 {
					t.Errorf("band %d/%d gap %v overlaps the band below it: bottom %v > %v", i, count, gap, bottom, prevTop)
				}
				if b.Top() < -1e-9 || bottom > 1+1e-9 {
					t.Errorf("band %d/%d gap %v leaves the canvas: [%v,%v]", i, count, gap, b.Top(), bottom)
				}
				prevTop = b.Top()
			}
		}
	}
}

func rectNear(a, b ViewRect) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.W-b.W) < eps && math.Abs(a.H-b.H) < eps
}
