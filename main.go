package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/x/explorer"
	"git.sr.ht/~whereswaldon/statechart/backend"
)

func main() {
	configPath := flag.String("config", "", "YAML file with chart settings")
	gap := flag.Float64("gap", 0, "fraction of each band left empty between series (overrides config)")
	reducer := flag.String("reducer", "", "rectangle reducer, one of none or merge (overrides config)")
	pid := flag.Int("pid", 0, "trace the process with this ID at startup")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [trace.csv ...]\n\nA trace of - is read from stdin.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed loading configuration: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "gap":
			cfg.GapFraction = *gap
		case "reducer":
			cfg.Reducer = *reducer
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	go func() {
		w := app.NewWindow(app.Title("State Chart"))
		if err := loop(w, cfg, flag.Args(), *pid); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

// openTraces opens the trace files named on the command line.
func openTraces(paths []string) ([]io.ReadCloser, error) {
	files := make([]io.ReadCloser, 0, len(paths))
	for _, path := range paths {
		if path == "-" {
			// Hide the file name so stdin is never watched for writes.
			files = append(files, io.NopCloser(os.Stdin))
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, fmt.Errorf("failed opening trace: %w", err)
		}
		files = append(files, f)
	}
	return files, nil
}

func loop(w *app.Window, cfg Config, traces []string, pid int) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	expl := explorer.NewExplorer(w)
	bundle, err := backend.NewBundle(ctx, w.Invalidate)
	if err != nil {
		return err
	}
	ws := backend.NewWindowState(ctx, bundle, w)

	switch {
	case pid != 0:
		if _, err := bundle.Datasource.LaunchProbe(pid); err != nil {
			log.Printf("failed tracing process %d: %v", pid, err)
		}
	case len(traces) > 0:
		files, err := openTraces(traces)
		if err != nil {
			return err
		}
		mode := backend.ModeReplaying
		if len(traces) == 1 && traces[0] == "-" {
			mode = backend.ModeLive
		}
		bundle.Datasource.LoadFromStream(mode, files...)
	}

	ui := NewUI(ws, expl, cfg)
	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
