package stats

import (
	"testing"
	"time"
)

func TestWindowSnapshotPercentiles(t *testing.T) {
	w := NewWindow(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		w.Observe(time.Duration(ms) * time.Millisecond)
	}

	snap := w.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %d %d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestWindowPrunesExpiredSamples(t *testing.T) {
	w := NewWindow(10 * time.Millisecond)
	w.Observe(100 * time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if snap := w.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}
	w.Observe(200 * time.Millisecond)
	if snap := w.Snapshot(); snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected one fresh sample of 200ms, got %+v", snap)
	}
}

func TestWindowClampsNegativeDuration(t *testing.T) {
	w := NewWindow(time.Hour)
	w.Observe(-10 * time.Millisecond)
	if snap := w.Snapshot(); snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap)
	}
}

func TestRecorderGroupsByName(t *testing.T) {
	r := NewRecorder(time.Hour)
	r.Observe("scan", 10*time.Millisecond)
	r.Observe("scan", 20*time.Millisecond)
	r.Observe("sync", 5*time.Millisecond)

	snap := r.Snapshot()
	if snap["scan"].Count != 2 || snap["sync"].Count != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if r.Window("scan") != r.Window("scan") {
		t.Fatal("expected the same window for repeated lookups")
	}
}
