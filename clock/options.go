package clock

import (
	"log/slog"
	"time"

	"dclock/hal"

	"github.com/jonboulle/clockwork"
)

// Options tune a Handle. Zero values select the defaults.
type Options struct {
	// BufferBytes is the size of each draw buffer. The default holds the
	// whole frame on monochrome panels and 40 rows on color panels.
	BufferBytes int
	// SingleBuffer disables the second draw buffer on color panels.
	// Monochrome panels always use one buffer.
	SingleBuffer bool

	QueueSize       int
	Quantum         time.Duration
	TickPeriod      time.Duration
	PostTimeout     time.Duration
	DispatchTimeout time.Duration
	// RefreshPeriod is the minimum interval between panel refreshes,
	// measured on the graphics tick counter.
	RefreshPeriod time.Duration

	InitialText string

	Clock     clockwork.Clock
	Allocator BufferAllocator
	Logger    *slog.Logger
}

func (o Options) withDefaults(p hal.Panel) Options {
	if o.BufferBytes == 0 {
		switch p.Class() {
		case hal.ClassMonochrome:
			o.BufferBytes = p.Width() * ((p.Height() + 7) / 8)
		default:
			o.BufferBytes = p.Width() * min(p.Height(), defaultColorRows) * 2
		}
	}
	if o.QueueSize == 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.Quantum <= 0 {
		o.Quantum = DefaultQuantum
	}
	if o.TickPeriod == 0 {
		o.TickPeriod = DefaultTickPeriod
	}
	if o.PostTimeout <= 0 {
		o.PostTimeout = DefaultPostTimeout
	}
	if o.DispatchTimeout <= 0 {
		o.DispatchTimeout = DefaultDispatchTimeout
	}
	if o.RefreshPeriod == 0 {
		o.RefreshPeriod = 30 * time.Millisecond
	}
	if o.InitialText == "" {
		o.InitialText = DefaultInitialText
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Allocator == nil {
		o.Allocator = HeapAllocator{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
