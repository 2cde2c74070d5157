package clock

import (
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dclock/hal"
)

type testPanel struct {
	class   hal.DisplayClass
	w, h    int
	initErr error

	inits   atomic.Int32
	closes  atomic.Int32
	flushes atomic.Int32

	// onFlush runs inside Flush when set.
	onFlush func(area image.Rectangle, px []byte)
}

func newMonoPanel() monoPanel {
	return monoPanel{&testPanel{class: hal.ClassMonochrome, w: 128, h: 64}}
}

func newColorPanel() *testPanel {
	return &testPanel{class: hal.ClassColor, w: 160, h: 128}
}

func (p *testPanel) Class() hal.DisplayClass { return p.class }
func (p *testPanel) Width() int              { return p.w }
func (p *testPanel) Height() int             { return p.h }

func (p *testPanel) Init() error {
	if p.initErr != nil {
		return p.initErr
	}
	p.inits.Add(1)
	return nil
}

func (p *testPanel) Flush(area image.Rectangle, px []byte) error {
	p.flushes.Add(1)
	if p.onFlush != nil {
		p.onFlush(area, px)
	}
	return nil
}

func (p *testPanel) Close() error {
	p.closes.Add(1)
	return nil
}

// monoPanel adds page addressing to testPanel.
type monoPanel struct {
	*testPanel
}

func (monoPanel) Round(area image.Rectangle) image.Rectangle { return hal.RoundToPages(area) }

func (monoPanel) SetPixel(buf []byte, bufWidth int, x, y int, on bool) {
	hal.SetPagedPixel(buf, bufWidth, x, y, on)
}

type countingAllocator struct {
	mu     sync.Mutex
	allocs int
	frees  int
	failAt int
	freed  atomic.Bool
}

var errOutOfMemory = errors.New("out of memory")

func (a *countingAllocator) Alloc(n int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failAt > 0 && a.allocs+1 == a.failAt {
		return nil, errOutOfMemory
	}
	a.allocs++
	return make([]byte, n), nil
}

func (a *countingAllocator) Free([]byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frees++
	a.freed.Store(true)
}

func (a *countingAllocator) counts() (allocs, frees int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs, a.frees
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
