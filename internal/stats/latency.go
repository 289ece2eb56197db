// Package stats keeps rolling latency windows for scan and sync operations.
package stats

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	at time.Time
	ms int64
}

// Snapshot is a point-in-time aggregate of one window.
type Snapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Window tracks durations observed within a rolling time window.
type Window struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewWindow(maxAge time.Duration) *Window {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Window{samples: make([]sample, 0, 256), maxAge: maxAge}
}

// Observe records one duration. Negative durations count as zero.
func (w *Window) Observe(d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
	w.samples = append(w.samples, sample{at: now, ms: ms})
}

func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(time.Now())
	if len(w.samples) == 0 {
		return Snapshot{}
	}
	values := make([]int64, 0, len(w.samples))
	var sum int64
	for _, s := range w.samples {
		values = append(values, s.ms)
		sum += s.ms
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return Snapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	keep := w.samples[:0]
	for _, s := range w.samples {
		if !s.at.Before(cutoff) {
			keep = append(keep, s)
		}
	}
	w.samples = keep
}

// Recorder groups windows by operation name.
type Recorder struct {
	mu      sync.Mutex
	maxAge  time.Duration
	windows map[string]*Window
}

func NewRecorder(maxAge time.Duration) *Recorder {
	return &Recorder{maxAge: maxAge, windows: make(map[string]*Window)}
}

// Window returns the named window, creating it on first use.
func (r *Recorder) Window(name string) *Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[name]
	if !ok {
		w = NewWindow(r.maxAge)
		r.windows[name] = w
	}
	return w
}

// Observe records d against the named window.
func (r *Recorder) Observe(name string, d time.Duration) {
	r.Window(name).Observe(d)
}

// Snapshot returns every window's aggregate keyed by name.
func (r *Recorder) Snapshot() map[string]Snapshot {
	r.mu.Lock()
	names := make([]string, 0, len(r.windows))
	ws := make([]*Window, 0, len(r.windows))
	for name, w := range r.windows {
		names = append(names, name)
		ws = append(ws, w)
	}
	r.mu.Unlock()

	out := make(map[string]Snapshot, len(names))
	for i, name := range names {
		out[name] = ws[i].Snapshot()
	}
	return out
}

func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}
	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo, hi := float64(sorted[lower]), float64(sorted[upper])
	return lo + (hi-lo)*weight
}
