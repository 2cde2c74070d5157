package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestTickSourceAdvances(t *testing.T) {
	clk := clockwork.NewFakeClock()
	var total atomic.Uint32
	ts := NewTickSource(clk, 2*time.Millisecond, func(ms uint32) { total.Add(ms) })

	if err := ts.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := ts.Start(); err == nil {
		t.Fatalf("second Start() error = nil, want error")
	}

	for i := 1; i <= 3; i++ {
		clk.Advance(2 * time.Millisecond)
		want := uint32(2 * i)
		waitFor(t, "tick", func() bool { return total.Load() >= want })
	}

	ts.Stop()
	ts.Stop()
	got := total.Load()
	clk.Advance(10 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if total.Load() != got {
		t.Fatalf("ticks advanced after Stop: %d -> %d", got, total.Load())
	}

	if err := ts.Start(); err != nil {
		t.Fatalf("Start() after Stop error = %v", err)
	}
	ts.Stop()
}

func TestTickSourceRejectsSubMillisecondPeriod(t *testing.T) {
	ts := NewTickSource(clockwork.NewFakeClock(), 500*time.Microsecond, func(uint32) {})
	if err := ts.Start(); err == nil {
		ts.Stop()
		t.Fatalf("Start() error = nil, want error")
	}
}
