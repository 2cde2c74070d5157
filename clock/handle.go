package clock

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"dclock/event"
	"dclock/gfx"
	"dclock/hal"

	"github.com/jonboulle/clockwork"
)

// Handle is a running clock. Create it with New and release it with Close.
type Handle struct {
	opts  Options
	log   *slog.Logger
	clk   clockwork.Clock
	alloc BufferAllocator
	panel hal.Panel

	// mu is the render lock: every gfx call except AdvanceTick and
	// TickCount happens under it.
	mu    sync.Mutex
	lib   *gfx.Library
	disp  *gfx.Display
	label *gfx.Label

	buf1, buf2  []byte
	panelInited bool

	loop  *event.Loop[TimeUpdate]
	ticks *TickSource

	state  atomic.Int32
	closed atomic.Bool
	once   sync.Once
	stop   chan struct{}
	done   chan struct{}

	cycles     atomic.Uint64
	dropped    atomic.Uint64
	dispatched atomic.Uint64
}

// New brings up the panel and starts the display task. It returns once
// the task has created its label and is running. On failure everything
// acquired so far is released.
func New(panel hal.Panel, opts Options) (*Handle, error) {
	if panel == nil {
		return nil, fmt.Errorf("%w: nil panel", ErrDriver)
	}
	opts = opts.withDefaults(panel)

	h := &Handle{
		opts:  opts,
		log:   opts.Logger,
		clk:   opts.Clock,
		alloc: opts.Allocator,
		panel: panel,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	if err := h.init(); err != nil {
		h.log.Error("create clock handle failed", "err", err)
		close(h.done)
		h.release()
		return nil, err
	}

	ready := make(chan error, 1)
	go h.run(ready)
	if err := <-ready; err != nil {
		<-h.done
		h.release()
		err = fmt.Errorf("%w: %w", ErrTaskCreation, err)
		h.log.Error("create clock handle failed", "err", err)
		return nil, err
	}

	h.log.Info("clock handle created",
		"class", panel.Class(),
		"size", fmt.Sprintf("%dx%d", panel.Width(), panel.Height()),
		"double_buffered", h.buf2 != nil,
	)
	return h, nil
}

func (h *Handle) init() error {
	var err error
	h.buf1, err = h.alloc.Alloc(h.opts.BufferBytes)
	if err != nil {
		return fmt.Errorf("%w: buf1: %w", ErrAllocation, err)
	}
	if h.panel.Class() == hal.ClassColor && !h.opts.SingleBuffer {
		h.buf2, err = h.alloc.Alloc(h.opts.BufferBytes)
		if err != nil {
			return fmt.Errorf("%w: buf2: %w", ErrAllocation, err)
		}
	}

	h.lib = gfx.New()
	if err := h.lib.Init(); err != nil {
		return fmt.Errorf("%w: %w", ErrDriver, err)
	}
	refresh := max(h.opts.RefreshPeriod, 0)
	h.lib.SetRefreshPeriod(uint32(refresh / time.Millisecond))

	if err := h.panel.Init(); err != nil {
		return fmt.Errorf("%w: init bus: %w", ErrDriver, err)
	}
	h.panelInited = true

	class := h.panel.Class()
	desc := gfx.DriverDesc{
		HorRes:  h.panel.Width(),
		VerRes:  h.panel.Height(),
		Class:   class,
		DrawBuf: gfx.NewDrawBuffer(h.buf1, h.buf2, gfx.PixelsFor(class, h.opts.BufferBytes)),
		Flush:   h.flush,
	}
	if r, ok := h.panel.(hal.PixelRounder); ok {
		desc.Rounder = r.Round
		desc.SetPixel = r.SetPixel
	}
	h.disp, err = h.lib.RegisterDriver(desc)
	if err != nil {
		return fmt.Errorf("%w: register: %w", ErrDriver, err)
	}

	h.loop, err = event.NewLoop[TimeUpdate](event.LoopOptions{
		QueueSize: h.opts.QueueSize,
		Clock:     h.clk,
	})
	if err != nil {
		return fmt.Errorf("%w: event loop: %w", ErrAllocation, err)
	}

	h.ticks = NewTickSource(h.clk, h.opts.TickPeriod, h.lib.AdvanceTick)
	return nil
}

func (h *Handle) flush(area image.Rectangle, px []byte) error {
	return h.panel.Flush(area, px)
}

// Close stops the display task, waits for it to exit and then releases
// the tick source, driver, buffers, event loop and panel in that order.
// It must not be called from a clock event handler. Calling Close again
// returns nil.
func (h *Handle) Close() error {
	var err error
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.stop)
		<-h.done
		err = h.release()
		h.log.Info("clock handle deleted")
	})
	return err
}

func (h *Handle) release() error {
	if h.ticks != nil {
		h.ticks.Stop()
	}

	h.mu.Lock()
	if h.disp != nil {
		h.lib.UnregisterDriver(h.disp)
		h.disp = nil
	}
	h.label = nil
	h.mu.Unlock()

	if h.buf1 != nil {
		h.alloc.Free(h.buf1)
		h.buf1 = nil
	}
	if h.buf2 != nil {
		h.alloc.Free(h.buf2)
		h.buf2 = nil
	}
	if h.loop != nil {
		h.loop.Close()
	}

	var errs []error
	if h.panelInited {
		h.panelInited = false
		errs = append(errs, h.panel.Close())
	}
	h.state.Store(int32(TaskStopped))
	return errors.Join(errs...)
}

// SetText replaces the label text under the render lock. Identical text
// does not trigger a redraw.
func (h *Handle) SetText(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed.Load() || h.label == nil {
		return ErrClosed
	}
	if h.label.Text() == text {
		return nil
	}
	h.lib.SetLabelText(h.label, text)
	h.log.Debug("display", "text", text)
	return nil
}

// Text returns the current label text.
func (h *Handle) Text() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.label == nil {
		return ""
	}
	return h.label.Text()
}

// RegisterHandler subscribes fn to every clock event.
func (h *Handle) RegisterHandler(fn Handler, arg any) (event.Registration, error) {
	reg, err := h.loop.Register(ClockEvents, event.AnyID, fn, arg)
	if err != nil {
		h.log.Error("add event handler failed", "err", err)
		return 0, err
	}
	h.log.Info("event handler added", "registration", reg)
	return reg, nil
}

// UnregisterHandler removes a handler added with RegisterHandler.
func (h *Handle) UnregisterHandler(reg event.Registration) error {
	if err := h.loop.Unregister(reg); err != nil {
		h.log.Error("removing an event handler failed", "registration", reg, "err", err)
		return err
	}
	h.log.Info("event handler removed", "registration", reg)
	return nil
}

// Ticks returns the graphics tick count in milliseconds.
func (h *Handle) Ticks() uint32 {
	return h.lib.TickCount()
}

// State reports the display task state.
func (h *Handle) State() TaskState {
	return TaskState(h.state.Load())
}

// Stats returns display task and render counters.
func (h *Handle) Stats() Stats {
	h.mu.Lock()
	gs := h.lib.Stats()
	h.mu.Unlock()

	return Stats{
		Cycles:       h.cycles.Load(),
		DroppedPosts: h.dropped.Load(),
		Dispatched:   h.dispatched.Load(),
		Refreshes:    gs.Refreshes,
		Flushes:      gs.Flushes,
	}
}
