// Package gfx is a small retained-mode graphics library for text panels.
//
// It keeps a tree of one screen and its labels per registered display,
// tracks invalidated areas, and renders them through caller-provided draw
// buffers into the display's flush callback.
//
// The library is not reentrant. Every call except AdvanceTick and
// TickCount must be serialized by the caller.
package gfx

import (
	"errors"
	"sync/atomic"
)

var (
	ErrNotInitialized = errors.New("gfx: library not initialized")
	ErrDriverBusy     = errors.New("gfx: a display is already registered")
	ErrInvalidDriver  = errors.New("gfx: invalid driver descriptor")
	ErrBufferTooSmall = errors.New("gfx: draw buffer too small")
)

// DefaultRefreshPeriod is the minimum tick distance between two refreshes.
const DefaultRefreshPeriod = 30

// Library is one graphics library instance.
type Library struct {
	tick atomic.Uint32

	inited bool
	disp   *Display
	font   Font

	refreshPeriod uint32
	lastRefresh   uint32
	refreshed     bool

	stats Stats
}

// Stats counts rendering work since Init.
type Stats struct {
	Refreshes uint64
	Flushes   uint64
}

// New returns an uninitialized library.
func New() *Library {
	return &Library{refreshPeriod: DefaultRefreshPeriod}
}

// Init resets library state and selects the default font.
func (l *Library) Init() error {
	f, err := DefaultFont()
	if err != nil {
		return err
	}
	l.inited = true
	l.disp = nil
	l.font = f
	l.lastRefresh = 0
	l.refreshed = false
	l.stats = Stats{}
	return nil
}

// SetFont changes the font used by labels created afterwards and
// re-lays-out existing ones.
func (l *Library) SetFont(f Font) {
	l.font = f
	if l.disp != nil {
		for _, lb := range l.disp.screen.labels {
			lb.layout()
		}
	}
}

// SetRefreshPeriod sets the minimum number of ticks between refreshes.
// Zero refreshes on every RunPending call.
func (l *Library) SetRefreshPeriod(ticks uint32) {
	l.refreshPeriod = ticks
}

// AdvanceTick adds ms to the tick counter. It is safe to call from any
// goroutine without holding the render lock.
func (l *Library) AdvanceTick(ms uint32) {
	l.tick.Add(ms)
}

// TickCount returns the tick counter in milliseconds.
func (l *Library) TickCount() uint32 {
	return l.tick.Load()
}

// Stats returns rendering counters.
func (l *Library) Stats() Stats {
	return l.stats
}
