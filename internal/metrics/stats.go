package metrics

import (
	"slices"
	"sync"
	"time"
)

// Run describes one finished collection run.
type Run struct {
	Duration time.Duration
	Cycles   int
	Items    int
	Reason   string // Stop reason, or "failed"
}

type sample struct {
	timestamp  time.Time
	durationMs int64
	cycles     int64
	items      int64
	reason     string
}

// Summary aggregates one measure across the samples in the window.
type Summary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// StatsSnapshot is a point-in-time aggregate of recent runs.
type StatsSnapshot struct {
	Count      int            `json:"count"`
	DurationMs Summary        `json:"duration_ms"`
	Cycles     Summary        `json:"cycles"`
	Items      Summary        `json:"items"`
	ByReason   map[string]int `json:"by_reason"`
}

// RunStats tracks recent collection runs within a rolling window.
type RunStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewRunStats(maxAge time.Duration) *RunStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &RunStats{
		samples: make([]sample, 0, 64),
		maxAge:  maxAge,
	}
}

func (s *RunStats) Record(run Run) {
	durationMs := run.Duration.Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationMs: durationMs,
		cycles:     int64(max(run.Cycles, 0)),
		items:      int64(max(run.Items, 0)),
		reason:     run.Reason,
	})
}

func (s *RunStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := StatsSnapshot{ByReason: map[string]int{}}
	if len(s.samples) == 0 {
		return snap
	}

	durations := make([]int64, 0, len(s.samples))
	cycles := make([]int64, 0, len(s.samples))
	items := make([]int64, 0, len(s.samples))
	for _, sm := range s.samples {
		durations = append(durations, sm.durationMs)
		cycles = append(cycles, sm.cycles)
		items = append(items, sm.items)
		if sm.reason != "" {
			snap.ByReason[sm.reason]++
		}
	}

	snap.Count = len(s.samples)
	snap.DurationMs = summarize(durations)
	snap.Cycles = summarize(cycles)
	snap.Items = summarize(items)
	return snap
}

func (s *RunStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

// summarize sorts values in place.
func summarize(values []int64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	slices.Sort(values)
	var sum int64
	for _, v := range values {
		sum += v
	}
	return Summary{
		Min: float64(values[0]),
		Max: float64(values[len(values)-1]),
		Avg: float64(sum) / float64(len(values)),
		P50: percentile(values, 50),
		P95: percentile(values, 95),
		P99: percentile(values, 99),
	}
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
