package ranking

import (
	"sync"
	"time"
)

// Stats tracks counters and timings for a single ranking request.
// Each call to Rank gets its own Stats, so concurrent requests never share
// counters. All operations are thread-safe.
type Stats struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string]time.Duration
}

// Counter and timing names recorded by Rank
const (
	StatRecords          = "records"
	StatWithCoordinates  = "with_coordinates"
	StatPrefiltered      = "prefiltered"
	StatDrivingResolved  = "driving_resolved"
	StatStraightFallback = "straight_line_fallback"
	StatResults          = "results"

	TimingPrefilter = "prefilter"
	TimingLookup    = "distance_lookup"
	TimingScore     = "score"
	TimingTotal     = "total"
)

// NewStats creates an empty Stats
func NewStats() *Stats {
	return &Stats{
		counters: make(map[string]int64),
		timings:  make(map[string]time.Duration),
	}
}

// Add increments a counter by n
func (s *Stats) Add(name string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] += n
}

// Incr increments a counter by 1
func (s *Stats) Incr(name string) {
	s.Add(name, 1)
}

// RecordTiming adds a duration to the named timing
func (s *Stats) RecordTiming(name string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timings[name] += d
}

// Time records the time elapsed since start under name
func (s *Stats) Time(name string, start time.Time) {
	s.RecordTiming(name, time.Since(start))
}

// Counter returns the current value of a counter
func (s *Stats) Counter(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[name]
}

// Timing returns the accumulated duration for a timing
func (s *Stats) Timing(name string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timings[name]
}

// Snapshot returns a copy of all counters plus timings in milliseconds,
// keyed "<name>_ms". The copy is safe to use after further updates.
func (s *Stats) Snapshot() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.counters)+len(s.timings))
	for k, v := range s.counters {
		out[k] = v
	}
	for k, v := range s.timings {
		out[k+"_ms"] = v.Milliseconds()
	}
	return out
}
