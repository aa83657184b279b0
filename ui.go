package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"strconv"
	"strings"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/statechart/backend"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws   backend.WindowState
	expl *explorer.Explorer

	chart       *StateChart
	launchBtn   widget.Clickable
	explorerBtn widget.Clickable
	pidEditor   widget.Editor
	launching   bool
	errText     string

	th           *material.Theme
	statusStream *stream.Stream[backend.Status]
	status       backend.Status
}

func NewUI(ws backend.WindowState, expl *explorer.Explorer, cfg Config) *UI {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	return &UI{
		ws:           ws,
		th:           th,
		expl:         expl,
		chart:        NewStateChart(ws.Bundle.Data, cfg),
		pidEditor:    widget.Editor{SingleLine: true, Submit: true, Filter: "0123456789"},
		statusStream: stream.New(ws.Controller, ws.Bundle.Datasource.Status),
	}
}

// parsePID validates the contents of the process ID field.
func parsePID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("enter the ID of a process to trace")
	}
	pid, err := strconv.Atoi(s)
	if err != nil || pid < 1 {
		return 0, fmt.Errorf("invalid process ID %q", s)
	}
	return pid, nil
}

func (ui *UI) tracePID(input string) {
	pid, err := parsePID(input)
	if err != nil {
		ui.errText = err.Error()
		return
	}
	ui.launching = true
	ui.errText = ""
	go func() {
		if _, err := ui.ws.Bundle.Datasource.LaunchProbe(pid); err != nil {
			log.Printf("failed tracing process %d: %v", pid, err)
		}
	}()
}

// Update the state of the UI and react to input.
func (ui *UI) Update(gtx C) {
	prev := ui.status
	ui.statusStream.ReadInto(gtx, &ui.status, backend.Status{})
	if ui.status.Err != nil && ui.status.Err != prev.Err {
		ui.errText = ui.status.Err.Error()
		ui.launching = false
	}
	for {
		ev, ok := ui.pidEditor.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok && !ui.launching {
			ui.tracePID(ui.pidEditor.Text())
		}
	}
	if !ui.launching && ui.launchBtn.Clicked(gtx) {
		ui.tracePID(ui.pidEditor.Text())
	}
	if ui.explorerBtn.Clicked(gtx) {
		go func() {
			if _, err := ui.ws.Bundle.Datasource.LoadFromFile(ui.expl); err != nil {
				log.Printf("failed opening trace: %v", err)
			}
		}()
	}
}

func (ui *UI) layoutMainArea(gtx C) D {
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			l := material.Body2(ui.th, fmt.Sprintf("Session %s (%s)", ui.status.SessionID, ui.status.Mode))
			return layout.UniformInset(4).Layout(gtx, l.Layout)
		}),
		layout.Rigid(func(gtx C) D {
			if len(ui.errText) == 0 {
				return D{}
			}
			l := material.Body1(ui.th, ui.errText)
			l.Color = color.NRGBA{R: 150, A: 255}
			return l.Layout(gtx)
		}),
		layout.Flexed(1, func(gtx C) D {
			return ui.chart.Layout(gtx, ui.th)
		}),
	)
}

func (ui *UI) layoutStartScreen(gtx C) D {
	l := material.Body1(ui.th, "No data yet.")
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return l.Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Button(ui.th, &ui.explorerBtn, "Open Existing Trace").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			if ui.launching {
				gtx = gtx.Disabled()
			}
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(func(gtx C) D {
					gtx.Constraints.Min.X = gtx.Dp(120)
					gtx.Constraints.Max.X = gtx.Constraints.Min.X
					return material.Editor(ui.th, &ui.pidEditor, "Process ID").Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(material.Button(ui.th, &ui.launchBtn, "Trace Process").Layout),
			)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Body2(ui.th, ui.errText).Layout(gtx)
		}),
	)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	if ui.status.Mode != backend.ModeNone {
		return ui.layoutMainArea(gtx)
	}
	return ui.layoutStartScreen(gtx)
}
