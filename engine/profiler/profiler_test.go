package profiler

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

func TestProfilerTick(t *testing.T) {
	var buf bytes.Buffer
	now := time.Unix(0, 0)
	p := NewProfiler(
		WithLogger(log.New(&buf, "", 0)),
		WithClock(func() time.Time { return now }),
		WithInterval(time.Second),
		WithCounters(func() FrameCounters { return FrameCounters{Drawn: 3, Culled: 1, Points: 900} }),
	)

	for i := 0; i < 49; i++ {
		now = now.Add(time.Second / 50)
		if p.Tick() {
			t.Fatalf("Tick %d logged before the interval elapsed", i)
		}
	}
	if p.Last() != nil {
		t.Fatal("Last: report before the first window")
	}

	now = now.Add(time.Second / 50)
	if !p.Tick() {
		t.Fatal("Tick: no report after one second")
	}
	r := p.Last()
	if r == nil || r.FPS < 49.9 || r.FPS > 50.1 {
		t.Fatalf("FPS\nhave %v\nwant 50", r)
	}
	if r.Counters.Drawn != 3 || r.Counters.Points != 900 {
		t.Fatalf("Counters\nhave %+v\nwant 3 drawn, 900 points", r.Counters)
	}
	if !strings.Contains(buf.String(), "[Profiler] FPS: 50.00 | Drawn: 3 (culled 1, 900 points)") {
		t.Fatalf("log line\nhave %q", buf.String())
	}
}
