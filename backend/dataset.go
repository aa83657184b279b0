package backend

import (
	"sync"
	"sync/atomic"

	"git.sr.ht/~whereswaldon/statechart/statechart"
)

// Dataset holds every series of a trace. It is written by the goroutine
// parsing the trace and read by the UI, so it is safe for concurrent use.
// Readers detect new data by comparing Version results.
type Dataset struct {
	lock   sync.RWMutex
	series []*Series
	// seriesMapping maps from series identifiers used by the trace reader to
	// the index of a series in this structure.
	seriesMapping map[int]int
	version       atomic.Uint64
}

var _ statechart.Source[string] = (*Dataset)(nil)

// Version changes every time the dataset is modified.
func (d *Dataset) Version() uint64 {
	return d.version.Load()
}

func (d *Dataset) Initialized() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	if len(d.series) == 0 {
		return false
	}
	for _, s := range d.series {
		if s.Initialized() {
			return true
		}
	}
	return false
}

// Domain returns the earliest and latest timestamps across all series.
func (d *Dataset) Domain() (dMin int64, dMax int64) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.domainLocked()
}

func (d *Dataset) domainLocked() (dMin int64, dMax int64) {
	first := true
	for _, s := range d.series {
		if !s.Initialized() {
			continue
		}
		sMin, sMax := s.Domain()
		if first {
			dMin, dMax = sMin, sMax
			first = false
			continue
		}
		dMin = min(sMin, dMin)
		dMax = max(sMax, dMax)
	}
	return dMin, dMax
}

// Names returns the name of every series in index order.
func (d *Dataset) Names() []string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	names := make([]string, len(d.series))
	for i, s := range d.series {
		names[i] = s.Name()
	}
	return names
}

// SetHeadings registers new series. It must be invoked for a series before
// the first call to Insert for it, and may be invoked again to add more.
//
// The series slice provides the trace reader's ID for each heading, which is
// likely to differ from the index used to store the data in this type.
func (d *Dataset) SetHeadings(headings []string, series []int) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.seriesMapping == nil {
		d.seriesMapping = make(map[int]int)
	}
	for i, identifier := range series {
		d.seriesMapping[identifier] = len(d.series)
		d.series = append(d.series, NewSeries(headings[i]))
	}
	d.version.Add(1)
}

// Insert the sample. Will panic if the sample's Series does not have a
// heading previously registered via SetHeadings.
func (d *Dataset) Insert(sample Sample) bool {
	d.lock.RLock()
	localIdx, ok := d.seriesMapping[sample.Series]
	if !ok {
		d.lock.RUnlock()
		panic("backend: sample for unregistered series")
	}
	s := d.series[localIdx]
	d.lock.RUnlock()
	inserted := s.Insert(sample)
	if inserted {
		d.version.Add(1)
	}
	return inserted
}

func (d *Dataset) SeriesCount() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.series)
}

// Samples returns the samples of a series with times in nanoseconds since
// the start of the dataset's domain.
func (d *Dataset) Samples(series int) []statechart.Sample[string] {
	d.lock.RLock()
	defer d.lock.RUnlock()
	origin, _ := d.domainLocked()
	s := d.series[series]
	return s.appendSamples(make([]statechart.Sample[string], 0, s.Len()), origin)
}

// Range returns the time extent shared by all series, relative to the start
// of the domain. It is never empty.
func (d *Dataset) Range(series int) statechart.Range {
	dMin, dMax := d.Domain()
	return statechart.Range{Min: 0, Max: float64(max(dMax-dMin, 1))}
}
