package profiler

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFrame(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProfiler(WithRegisterer(reg))

	p.ObserveFrame(time.Millisecond, 12, true)
	p.ObserveFrame(2*time.Millisecond, 12, false)
	p.ObserveFrame(time.Millisecond, 7, true)

	if got := testutil.ToFloat64(p.framesTotal); got != 3 {
		t.Errorf("frames = %v, want 3", got)
	}
	if got := testutil.ToFloat64(p.invalidTotal); got != 1 {
		t.Errorf("invalid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.tracks); got != 7 {
		t.Errorf("tracks = %v, want 7", got)
	}
	if n, err := testutil.GatherAndCount(reg, "oxy_anim_frame_duration_seconds"); err != nil || n != 1 {
		t.Errorf("histogram count = %d, %v", n, err)
	}
}

func TestTickSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(WithInterval(time.Hour), WithLogger(log.New(&buf, "", 0)))

	if p.Tick() {
		t.Fatal("Tick logged before the interval elapsed")
	}

	p.ObserveFrame(time.Millisecond, 3, false)
	p.updateInterval = 0
	if !p.Tick() {
		t.Fatal("Tick did not log after the interval elapsed")
	}
	out := buf.String()
	if !strings.Contains(out, "[Profiler]") || !strings.Contains(out, "1 frames") || !strings.Contains(out, "1 invalid") {
		t.Errorf("summary = %q", out)
	}
	if p.animFrames != 0 || p.frameCount != 0 {
		t.Error("counters not reset after the summary")
	}
}

func TestUnregisteredProfiler(t *testing.T) {
	p := NewProfiler()
	p.ObserveFrame(time.Microsecond, 1, true)
	if got := testutil.ToFloat64(p.framesTotal); got != 1 {
		t.Errorf("frames = %v, want 1", got)
	}
}
