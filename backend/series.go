package backend

import (
	"sync"

	"git.sr.ht/~whereswaldon/statechart/statechart"
)

// Series represents the state history of one timeline in a trace.
type Series struct {
	lock                 sync.RWMutex
	timestamps           []int64
	states               []string
	present              []bool
	domainMin, domainMax int64
	name                 string
	initialized          bool
}

func NewSeries(name string) *Series {
	return &Series{name: name}
}

func (s *Series) Name() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.name
}

func (s *Series) Initialized() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.initialized
}

func (s *Series) Domain() (min int64, max int64) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.domainMin, s.domainMax
}

func (s *Series) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.timestamps)
}

// Insert appends a state change to the series. Samples older than the
// newest one already present are rejected and the method returns false.
func (s *Series) Insert(sample Sample) (inserted bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if n := len(s.timestamps); n > 0 && s.timestamps[n-1] > sample.TimestampNS {
		// Reject samples that would break time ordering.
		return false
	}
	if !s.initialized {
		s.domainMin = sample.TimestampNS
		s.domainMax = sample.TimestampNS
		s.initialized = true
	}
	s.domainMax = max(sample.TimestampNS, s.domainMax)
	s.timestamps = append(s.timestamps, sample.TimestampNS)
	s.states = append(s.states, sample.State)
	s.present = append(s.present, sample.Present)
	return true
}

// appendSamples converts the series into chart samples with times relative
// to origin, appending them to dst.
func (s *Series) appendSamples(dst []statechart.Sample[string], origin int64) []statechart.Sample[string] {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for i, ts := range s.timestamps {
		dst = append(dst, statechart.Sample[string]{
			Time:    float64(ts - origin),
			Value:   s.states[i],
			Present: s.present[i],
		})
	}
	return dst
}
