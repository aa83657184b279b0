package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"git.sr.ht/~whereswaldon/statechart/probe"
	"git.sr.ht/~whereswaldon/statechart/procfs"
)

func linuxUsage() {
	fmt.Fprintf(flag.CommandLine.Output(), `%[1]s: collect a csv thread state trace from a running process
Usage:

 %[1]s -pid 1234 > file

OR

 %[1]s -pid 1234 | statechart -

Threads are discovered once at startup. Tracing other users' processes
requires permission to read their /proc entries.

`, os.Args[0])
	flag.PrintDefaults()
}

func unsupportedUsage() {
	fmt.Fprintf(flag.CommandLine.Output(), `%[1]s: collect a csv thread state trace from a running process

This platform is unsupported; no thread states are available.

`, os.Args[0])
	flag.PrintDefaults()
}

// csvCell quotes names that would otherwise break the trace format.
func csvCell(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func main() {
	switch runtime.GOOS {
	case "linux":
		flag.Usage = linuxUsage
	default:
		flag.Usage = unsupportedUsage
	}
	dur := flag.Duration("sample-interval", 10*time.Millisecond, "Interval between reading thread states")
	outputName := flag.String("output", "-", "Output file for CSV trace data")
	pid := flag.Int("pid", 0, "Process to trace")
	flag.Parse()
	if *pid <= 0 {
		flag.Usage()
		os.Exit(2)
	}
	probes, err := procfs.FindThreads(*pid)
	if err != nil {
		log.Fatalf("failed finding threads: %v", err)
	}
	if len(probes) < 1 {
		log.Fatalf("No threads found for process %d", *pid)
	}

	var output io.WriteCloser
	if *outputName == "-" {
		output = os.Stdout
	} else {
		f, err := os.Create(*outputName)
		if err != nil {
			log.Fatalf("failed opening output file %q: %v", *outputName, err)
		}
		output = f
	}
	w := bufio.NewWriter(output)
	shutdown := func() {
		if err := w.Flush(); err != nil {
			log.Printf("failed flushing output: %v", err)
		}
		if err := output.Close(); err != nil {
			log.Printf("failed closing output: %v", err)
		}
	}

	fmt.Fprintf(w, "timestamp (ns)")
	for _, p := range probes {
		fmt.Fprintf(w, ", %s", csvCell(p.Name()))
	}
	fmt.Fprintln(w)

	// last holds the most recently written cell for each thread so that only
	// changes are emitted.
	last := make([]string, len(probes))
	cells := make([]string, len(probes))
	ticker := time.NewTicker(*dur)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer ticker.Stop()
	for {
		select {
		case <-sigChan:
			// We've gotten an interrupt; shut down.
			shutdown()
			return
		case sampleTime := <-ticker.C:
			if !procfs.Alive(*pid) {
				log.Printf("process %d exited", *pid)
				shutdown()
				return
			}
			changed := false
			for i, p := range probes {
				state, present, err := p.Read()
				if err != nil {
					log.Printf("failed reading %s: %v", p.Name(), err)
					cells[i] = ""
					continue
				}
				if !present {
					state = probe.Absent
				}
				if state == last[i] {
					cells[i] = ""
					continue
				}
				last[i] = state
				cells[i] = state
				changed = true
			}
			if !changed {
				continue
			}
			fmt.Fprintf(w, "%d", sampleTime.UnixNano())
			for _, c := range cells {
				fmt.Fprintf(w, ", %s", c)
			}
			fmt.Fprintln(w)
			if err := w.Flush(); err != nil {
				log.Printf("failed writing trace: %v", err)
				return
			}
		}
	}
}
