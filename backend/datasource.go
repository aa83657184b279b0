package backend

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gioui.org/x/explorer"
	"git.sr.ht/~whereswaldon/statechart/probe"
	"github.com/fsnotify/fsnotify"
)

// AbsentMarker is the cell value recording that a series has no state.
const AbsentMarker = probe.Absent

// Sample is one state change read from a trace.
type Sample struct {
	TimestampNS int64
	Series      int
	State       string
	Present     bool
}

type InputKind uint8

const (
	KindSample InputKind = iota
	KindHeadings
)

type InputData struct {
	Kind InputKind
	Sample
	Headings      []string
	HeadingSeries []int
}

type Mode uint8

const (
	ModeNone Mode = iota
	ModeLive
	ModeReplaying
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeLive:
		return "live"
	case ModeReplaying:
		return "replaying"
	default:
		return "unknown"
	}
}

// Status describes what the datasource is currently doing.
type Status struct {
	Mode      Mode
	SessionID string
	Err       error
}

// Datasource feeds traces into a Dataset, either by replaying a file or by
// running the probe against a live process.
type Datasource struct {
	Data *Dataset

	appCtx        context.Context
	watcher       *fsnotify.Watcher
	invalidate    func()
	seriesCounter atomic.Int32

	lock    sync.Mutex
	status  Status
	changed chan struct{}
}

// NewDatasource creates a datasource filling ds. invalidate is called after
// every change to the dataset or status, and may be nil.
func NewDatasource(appCtx context.Context, ds *Dataset, invalidate func()) (*Datasource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	if invalidate == nil {
		invalidate = func() {}
	}
	d := &Datasource{
		Data:       ds,
		appCtx:     appCtx,
		watcher:    watcher,
		invalidate: invalidate,
		changed:    make(chan struct{}),
	}
	go func() {
		<-appCtx.Done()
		if err := watcher.Close(); err != nil {
			log.Printf("failed closing file watcher: %v", err)
		}
	}()
	return d, nil
}

func (d *Datasource) setStatus(f func(*Status)) {
	d.lock.Lock()
	f(&d.status)
	close(d.changed)
	d.changed = make(chan struct{})
	d.lock.Unlock()
	d.invalidate()
}

// Status streams the current status and every later change until ctx is
// cancelled.
func (d *Datasource) Status(ctx context.Context) <-chan Status {
	out := make(chan Status, 1)
	go func() {
		defer close(out)
		for {
			d.lock.Lock()
			status, changed := d.status, d.changed
			d.lock.Unlock()
			select {
			case out <- status:
			case <-ctx.Done():
				return
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func generateSessionID() string {
	return strings.Replace(time.Now().UTC().Format("20060102150405.000000000"), ".", "", 1)
}

func sessionFileFor(sessionID string) string {
	return "statechart-" + sessionID + ".csv"
}

// recordSession reads every source into the dataset until the sources are
// exhausted or the application shuts down. Live sessions are also copied
// into a session file.
func (d *Datasource) recordSession(sessionID string, mode Mode, files ...io.ReadCloser) {
	d.setStatus(func(s *Status) {
		*s = Status{Mode: mode, SessionID: sessionID}
	})
	fail := func(err error) {
		log.Printf("session %s: %v", sessionID, err)
		d.setStatus(func(s *Status) { s.Err = err })
	}
	rawSamples := make(chan InputData, 1024)
	var readers sync.WaitGroup
	for _, file := range files {
		follow := false
		if f, ok := file.(interface{ Name() string }); ok && mode == ModeReplaying {
			if err := d.watcher.Add(f.Name()); err != nil {
				log.Printf("not watching %q for changes: %v", f.Name(), err)
			} else {
				follow = true
			}
		}
		readers.Add(1)
		go func(file io.ReadCloser, follow bool) {
			defer readers.Done()
			defer file.Close()
			if err := d.readSource(d.appCtx, file, follow, rawSamples); err != nil {
				fail(err)
			}
		}(file, follow)
	}
	go func() {
		readers.Wait()
		close(rawSamples)
	}()

	var sessionFile *os.File
	var sessionWriter *bufio.Writer
	var csvWriter *csv.Writer
	if mode == ModeLive {
		var err error
		sessionFile, err = os.Create(sessionFileFor(sessionID))
		if err != nil {
			fail(fmt.Errorf("failed creating session file: %w", err))
		} else {
			sessionWriter = bufio.NewWriter(sessionFile)
			csvWriter = csv.NewWriter(sessionWriter)
		}
	}
	flushAll := func() {
		if csvWriter == nil {
			return
		}
		csvWriter.Flush()
		err := errors.Join(csvWriter.Error(), sessionWriter.Flush(), sessionFile.Close())
		if err != nil {
			fail(fmt.Errorf("failed saving session: %w", err))
		}
	}
	defer flushAll()

	headings := []string{"timestamp (ns)"}
	seriesIDToColumn := map[int]int{}
	for {
		select {
		case <-d.appCtx.Done():
			return
		case input, ok := <-rawSamples:
			if !ok {
				return
			}
			if input.Kind == KindHeadings {
				d.Data.SetHeadings(input.Headings, input.HeadingSeries)
				for i, heading := range input.Headings {
					seriesIDToColumn[input.HeadingSeries[i]] = len(headings)
					headings = append(headings, heading)
				}
				if csvWriter != nil {
					if err := csvWriter.Write(headings); err != nil {
						fail(fmt.Errorf("failed writing session headings: %w", err))
						return
					}
				}
			} else {
				if !d.Data.Insert(input.Sample) {
					log.Printf("dropping out-of-order sample at %d", input.TimestampNS)
					continue
				}
				if csvWriter != nil {
					record := make([]string, len(headings))
					record[0] = strconv.FormatInt(input.TimestampNS, 10)
					record[seriesIDToColumn[input.Series]] = encodeState(input.State, input.Present)
					if err := csvWriter.Write(record); err != nil {
						fail(fmt.Errorf("failed writing session sample: %w", err))
						return
					}
				}
			}
			d.invalidate()
		}
	}
}

func encodeState(state string, present bool) string {
	if !present {
		return AbsentMarker
	}
	return state
}

// LoadFromFile asks the user for a trace file and replays it.
func (d *Datasource) LoadFromFile(expl *explorer.Explorer) (string, error) {
	file, err := expl.ChooseFile("csv")
	if err != nil {
		return "", fmt.Errorf("failed choosing trace file: %w", err)
	}
	return d.LoadFromStream(ModeReplaying, file), nil
}

// LoadFromStream starts a session reading the given trace streams and
// returns its ID.
func (d *Datasource) LoadFromStream(mode Mode, files ...io.ReadCloser) string {
	id := generateSessionID()
	go d.recordSession(id, mode, files...)
	return id
}

// LaunchProbe runs the probe against the process pid and records its trace.
func (d *Datasource) LaunchProbe(pid int) (string, error) {
	traceReader, err := launchProbe(d.appCtx, pid)
	if err != nil {
		d.setStatus(func(s *Status) { s.Err = err })
		return "", err
	}
	return d.LoadFromStream(ModeLive, traceReader), nil
}

func runProbeWithName(ctx context.Context, exeName string, pid int) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, exeName, "-pid", strconv.Itoa(pid))
	cmd.Stderr = os.Stderr
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed acquiring stdout pipe: %w", err)
	}
	return out, cmd.Start()
}

func launchProbe(ctx context.Context, pid int) (io.ReadCloser, error) {
	const probeExeName = "statechart-probe"
	execPath, err := os.Executable()
	if err == nil {
		probeExe := filepath.Join(filepath.Dir(execPath), probeExeName)
		if runtime.GOOS == "windows" {
			probeExe += ".exe"
		}
		log.Printf("Looking for %q", probeExe)
		output, err := runProbeWithName(ctx, probeExe, pid)
		if err == nil {
			return output, nil
		}
	}

	log.Printf("Searching path for probe")
	probeExe, err := exec.LookPath(probeExeName)
	if err != nil {
		return nil, fmt.Errorf("unable to locate %q in $PATH: %w", probeExeName, err)
	}

	output, err := runProbeWithName(ctx, probeExe, pid)
	if err != nil {
		return nil, fmt.Errorf("failed launching %q: %w", probeExe, err)
	}
	return output, nil
}

// readSource parses a trace CSV and sends its headings and samples on
// samplesChan. When follow is set, reaching EOF waits for the file watcher to
// report a write before reading again, so traces that are still being
// written are followed. Otherwise EOF ends the read.
func (d *Datasource) readSource(ctx context.Context, source io.Reader, follow bool, samplesChan chan<- InputData) error {
	csvReader := csv.NewReader(newLineReader(source, follow))
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	headings, err := csvReader.Read()
	if err != nil {
		return fmt.Errorf("failed reading trace headings: %w", err)
	}
	if len(headings) < 2 {
		return fmt.Errorf("trace has no series columns: %q", headings)
	}
	headingSeries := make([]int, 0, len(headings)-1)
	seriesHeadings := make([]string, 0, len(headings)-1)
	for _, heading := range headings[1:] {
		seriesHeadings = append(seriesHeadings, strings.TrimSpace(heading))
		headingSeries = append(headingSeries, int(d.seriesCounter.Add(1)))
	}
	send := func(in InputData) bool {
		select {
		case samplesChan <- in:
			return true
		case <-ctx.Done():
			return false
		}
	}
	if !send(InputData{
		Kind:          KindHeadings,
		Headings:      seriesHeadings,
		HeadingSeries: headingSeries,
	}) {
		return nil
	}
	// Continuously parse the CSV data and send it on the channel.
readLoop:
	for {
		rec, err := csvReader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !follow {
					return nil
				}
				for {
					select {
					case <-ctx.Done():
						return nil
					case ev, ok := <-d.watcher.Events:
						if !ok {
							return nil
						}
						if ev.Has(fsnotify.Write) {
							continue readLoop
						}
					case err, ok := <-d.watcher.Errors:
						if !ok {
							return nil
						}
						log.Printf("file watcher error: %v", err)
					}
				}
			}
			return fmt.Errorf("could not read trace data: %w", err)
		}
		ns, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			log.Printf("failed parsing timestamp: %v", err)
			continue
		}
		for i := 1; i < len(rec) && i <= len(headingSeries); i++ {
			cell := strings.TrimSpace(rec[i])
			if len(cell) < 1 {
				// Skip null cells.
				continue
			}
			present := cell != AbsentMarker
			if !present {
				cell = ""
			}
			if !send(InputData{
				Kind: KindSample,
				Sample: Sample{
					TimestampNS: ns,
					Series:      headingSeries[i-1],
					State:       cell,
					Present:     present,
				},
			}) {
				return nil
			}
		}
	}
}
