package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"strconv"

	"gioui.org/font"
	"gioui.org/gesture"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"git.sr.ht/~whereswaldon/statechart/backend"
	"git.sr.ht/~whereswaldon/statechart/statechart"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

var pauseIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.AVPause)
	return icon
}()

var playIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.AVPlayArrow)
	return icon
}()

var fitIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.NavigationFullscreen)
	return icon
}()

// rectPainter draws the rectangles handed out by the chart engine. The
// engine works on the whole zoomed timeline, so offset shifts them into the
// visible plot.
type rectPainter struct {
	ops    *op.Ops
	offset float64
}

var _ statechart.Renderer[string] = (*rectPainter)(nil)

func (p *rectPainter) Draw(r statechart.ViewRect, hovered bool, state string) {
	minX := int(floor(r.X - p.offset))
	maxX := max(int(ceil(r.Right()-p.offset)), minX+1)
	rect := clip.Rect{
		Min: image.Pt(minX, int(floor(r.Y))),
		Max: image.Pt(maxX, max(int(ceil(r.Y+r.H)), int(floor(r.Y))+1)),
	}
	col := colorFor(state)
	if hovered {
		col = hoverColor
	}
	paint.FillShape(p.ops, col, rect.Op())
}

// StateChart displays every series of a dataset as a band of colored state
// rectangles with a key underneath.
type StateChart struct {
	data    *backend.Dataset
	engine  *statechart.Chart[string]
	painter rectPainter
	version uint64

	zoom    gesture.Scroll
	pan     gesture.Scroll
	panBar  widget.Scrollbar
	nsPerDp int64
	// offset is the distance in pixels from the start of the timeline to the
	// left edge of the plot.
	offset    float64
	paused    bool
	pauseBtn  widget.Clickable
	fitBtn    widget.Clickable
	keyTable  component.GridState
	plotSize  image.Point
	timeline  float64
	hovered   statechart.Hover
	hoverBand int
	// selected is the state last activated, shown in the key row of
	// selectedBand.
	selected     string
	selectedBand int
}

func NewStateChart(ds *backend.Dataset, cfg Config) *StateChart {
	c := &StateChart{
		data:      ds,
		nsPerDp:   cfg.NsPerDp,
		hovered:   statechart.NoHover,
		hoverBand: statechart.NoIndex,

		selectedBand: statechart.NoIndex,
	}
	c.engine = statechart.NewChart[string](ds, statechart.Config[string]{
		GapFraction: cfg.GapFraction,
		Reducer:     cfg.ChartReducer(),
		Renderer:    &c.painter,
	})
	c.engine.OnHoverChanged(func(series int) {
		c.hoverBand = series
	})
	c.engine.OnItemActivated(func(state string) {
		log.Printf("selected state %q", state)
		c.selected = state
		c.selectedBand = c.hoverBand
	})
	return c
}

// timelineWidth returns the width in pixels of the entire dataset at the
// current zoom level. It never shrinks below the plot width.
func (c *StateChart) timelineWidth(gtx C) float64 {
	dMin, dMax := c.data.Domain()
	dp := float64(max(dMax-dMin, 1)) / float64(c.nsPerDp)
	return max(dp*float64(gtx.Metric.PxPerDp), float64(c.plotSize.X))
}

func (c *StateChart) maxOffset() float64 {
	return max(c.timeline-float64(c.plotSize.X), 0)
}

func (c *StateChart) Update(gtx C) {
	if v := c.data.Version(); v != c.version {
		c.version = v
		c.engine.MarkDirty()
	}
	if c.pauseBtn.Clicked(gtx) {
		c.paused = !c.paused
	}
	if c.fitBtn.Clicked(gtx) {
		dMin, dMax := c.data.Domain()
		if dp := gtx.Metric.PxToDp(max(c.plotSize.X, 1)); dp > 0 {
			c.nsPerDp = max(int64(math.Ceil(float64(dMax-dMin)/float64(dp))), 1)
		}
		c.offset = 0
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: c,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move | pointer.Press | pointer.Cancel,
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		x := float64(e.Position.X) + c.offset
		y := float64(e.Position.Y)
		w, h := c.timeline, float64(c.plotSize.Y)
		switch e.Kind {
		case pointer.Enter, pointer.Move:
			c.hovered = c.engine.PointerMoved(x, y, w, h)
		case pointer.Leave, pointer.Cancel:
			c.engine.PointerExited()
			c.hovered = statechart.NoHover
		case pointer.Press:
			if e.Buttons.Contain(pointer.ButtonPrimary) {
				c.engine.Activate(x, y, w, h)
			}
		}
	}
}

// hoveredState describes the sample under the pointer, if any.
func (c *StateChart) hoveredState() (string, bool) {
	if c.hovered.Item == statechart.NoIndex {
		return "", false
	}
	s, ok := c.engine.Sample(c.hovered.Series, c.hovered.Item)
	if !ok {
		return "", false
	}
	if !s.Present {
		return backend.AbsentMarker, true
	}
	return s.Value, true
}

func (c *StateChart) Layout(gtx C, th *material.Theme) D {
	c.Update(gtx)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexed(1, func(gtx C) D {
			return c.layoutPlot(gtx, th)
		}),
		layout.Rigid(func(gtx C) D {
			return c.layoutControls(gtx, th)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Max.Y = min(gtx.Constraints.Max.Y, gtx.Dp(200))
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return c.layoutKey(gtx, th)
		}),
	)
}

func (c *StateChart) layoutPlot(gtx C, th *material.Theme) D {
	c.plotSize = gtx.Constraints.Max
	dist := c.zoom.Update(gtx.Metric, gtx.Source, gtx.Now, gesture.Vertical, image.Rect(0, -1e6, 0, 1e6))
	if dist != 0 {
		proportion := 1 + float64(dist)/float64(max(gtx.Constraints.Max.Y, 1))
		c.nsPerDp = max(int64(math.Round(float64(c.nsPerDp)*proportion)), 1)
	}
	c.timeline = c.timelineWidth(gtx)
	panned := float64(c.pan.Update(gtx.Metric, gtx.Source, gtx.Now, gesture.Horizontal, image.Rect(-1e6, 0, 1e6, 0)))
	if panDist := c.panBar.ScrollDistance(); panDist != 0 {
		panned += float64(panDist) * c.timeline
	}
	if panned != 0 {
		// Panning stops following the newest data.
		c.paused = true
		c.offset += panned
	}
	if !c.paused {
		c.offset = c.maxOffset()
	}
	c.offset = clampTo(c.offset, 0, c.maxOffset())

	width := float64(gtx.Constraints.Max.X)
	height := float64(gtx.Constraints.Max.Y)
	vpStart := float32(c.offset / c.timeline)
	vpEnd := float32((c.offset + width) / c.timeline)

	return layout.Stack{Alignment: layout.S}.Layout(gtx,
		layout.Stacked(func(gtx C) D {
			defer clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops).Pop()
			c.pan.Add(gtx.Ops)
			c.zoom.Add(gtx.Ops)
			event.Op(gtx.Ops, c)
			c.painter.ops = gtx.Ops
			c.painter.offset = c.offset
			c.engine.Draw(c.timeline, height, statechart.Clip{MinX: c.offset, MaxX: c.offset + width})
			if !c.data.Initialized() {
				l := material.Body1(th, "Waiting for samples...")
				layout.Center.Layout(gtx, l.Layout)
			}
			return D{Size: gtx.Constraints.Max}
		}),
		layout.Expanded(func(gtx C) D {
			scrollbar := material.Scrollbar(th, &c.panBar)
			scrollbar.Track.MajorPadding = 0
			scrollbar.Track.MinorPadding = 0
			scrollbar.Indicator.CornerRadius = 0
			scrollbar.Indicator.Color.A = 100
			return scrollbar.Layout(gtx, layout.Horizontal, vpStart, vpEnd)
		}),
	)
}

func (c *StateChart) layoutControls(gtx C, th *material.Theme) D {
	dMin, dMax := c.data.Domain()
	spanSecs := float64(dMax-dMin) / 1_000_000_000
	var startSecs, endSecs float64
	if c.timeline > 0 {
		startSecs = c.offset / c.timeline * spanSecs
		endSecs = (c.offset + float64(c.plotSize.X)) / c.timeline * spanSecs
	}
	startLabel := material.Body1(th, strconv.FormatFloat(startSecs, 'f', 3, 64)+"s")
	endLabel := material.Body1(th, strconv.FormatFloat(endSecs, 'f', 3, 64)+"s")
	axisLabel := material.Body2(th, fmt.Sprintf("Time (spans %.2f s, scale = %d ns/Dp)", spanSecs, c.nsPerDp))
	axisLabel.MaxLines = 1
	axisLabel.Alignment = text.Middle
	iconButton := func(btn *widget.Clickable, icon *widget.Icon) layout.FlexChild {
		return layout.Rigid(func(gtx C) D {
			sz := gtx.Dp(32)
			gtx.Constraints = layout.Exact(image.Pt(sz, sz))
			return material.Clickable(gtx, btn, func(gtx C) D {
				return layout.Center.Layout(gtx, func(gtx C) D {
					return icon.Layout(gtx, th.Fg)
				})
			})
		})
	}
	icon := pauseIcon
	if c.paused {
		icon = playIcon
	}
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		iconButton(&c.pauseBtn, icon),
		iconButton(&c.fitBtn, fitIcon),
		layout.Rigid(startLabel.Layout),
		layout.Flexed(1, axisLabel.Layout),
		layout.Rigid(endLabel.Layout),
	)
}

func (c *StateChart) layoutKey(gtx C, th *material.Theme) D {
	table := component.Table(th, &c.keyTable)
	table.HScrollbarStyle.Indicator.MinorWidth = 0
	table.HScrollbarStyle.Track.MinorPadding = 0
	table.VScrollbarStyle.Indicator.MinorWidth = 0
	table.VScrollbarStyle.Track.MinorPadding = 0
	names := c.data.Names()
	stateColWidth := gtx.Dp(200)
	nameColWidth := gtx.Constraints.Max.X - 2*stateColWidth - gtx.Dp(table.VScrollbarStyle.Width())
	rowHeight := gtx.Sp(20)
	hoverState, hoverOK := c.hoveredState()
	const (
		seriesNameCol = iota
		hoverStateCol
		selectedCol
		numCols
	)
	return table.Layout(gtx, len(names), numCols,
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(constraint, rowHeight)
			}
			switch index {
			case seriesNameCol:
				return min(max(nameColWidth, 0), constraint)
			default:
				return min(stateColWidth, constraint)
			}
		},
		func(gtx C, index int) D {
			var l material.LabelStyle
			switch index {
			case seriesNameCol:
				l = material.Body1(th, "Series")
			case hoverStateCol:
				l = material.Body1(th, "State Under Pointer")
				l.Alignment = text.Middle
			case selectedCol:
				l = material.Body1(th, "Selected State")
				l.Alignment = text.End
			default:
				l = material.Body1(th, "???")
			}
			l.Color = th.ContrastFg
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Max}.Op())
					return D{Size: gtx.Constraints.Min}
				}, l.Layout,
			)
		},
		func(gtx C, row, col int) (dims D) {
			defer func() {
				dims.Size = gtx.Constraints.Constrain(dims.Size)
			}()
			hovered := row == c.hoverBand
			dims = layout.UniformInset(2).Layout(gtx, func(gtx C) D {
				switch col {
				case seriesNameCol:
					l := material.Body2(th, names[row])
					if hovered {
						l.Font.Weight = font.Bold
					}
					return l.Layout(gtx)
				case hoverStateCol:
					if !hovered || !hoverOK {
						return D{Size: gtx.Constraints.Min}
					}
					return stateLabel(gtx, th, hoverState, text.Middle)
				case selectedCol:
					if row != c.selectedBand {
						return D{Size: gtx.Constraints.Min}
					}
					return stateLabel(gtx, th, c.selected, text.End)
				default:
					return D{Size: gtx.Constraints.Max}
				}
			})
			if hovered {
				col := hoverColor
				col.A = 50
				paint.FillShape(gtx.Ops, col, clip.Rect{Max: gtx.Constraints.Max}.Op())
			}
			return dims
		})
}

// stateLabel shows a state name next to a swatch of its color.
func stateLabel(gtx C, th *material.Theme, state string, align text.Alignment) D {
	swatch := colorFor(state)
	if state == backend.AbsentMarker {
		swatch = color.NRGBA{A: 40}
	}
	l := material.Body2(th, state)
	l.Alignment = align
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			sz := image.Pt(gtx.Dp(10), gtx.Dp(10))
			paint.FillShape(gtx.Ops, swatch, clip.Rect{Max: sz}.Op())
			return D{Size: sz}
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Flexed(1, l.Layout),
	)
}

func ceil[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Ceil(float64(a)))
}

func floor[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}

func clampTo[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
