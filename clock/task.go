package clock

import (
	"errors"

	"dclock/event"
)

// run is the display task. It reports the outcome of initialization on
// ready and then cycles once per quantum until Close.
func (h *Handle) run(ready chan<- error) {
	defer close(h.done)

	h.state.Store(int32(TaskInitializing))
	if err := h.ticks.Start(); err != nil {
		h.state.Store(int32(TaskStopped))
		ready <- err
		return
	}

	h.mu.Lock()
	h.label = h.lib.CreateLabel(h.lib.ActiveScreen())
	if h.label != nil {
		h.lib.SetLabelText(h.label, h.opts.InitialText)
	}
	h.mu.Unlock()
	if h.label == nil {
		h.ticks.Stop()
		h.state.Store(int32(TaskStopped))
		ready <- errors.New("no active screen for label")
		return
	}
	h.log.Info("created a label", "text", h.opts.InitialText)

	quantum := h.clk.NewTicker(h.opts.Quantum)
	defer quantum.Stop()

	h.state.Store(int32(TaskRunning))
	ready <- nil

	for {
		select {
		case <-h.stop:
			h.state.Store(int32(TaskStopped))
			return
		case <-quantum.Chan():
		}
		h.cycle()
	}
}

func (h *Handle) cycle() {
	h.mu.Lock()
	_, err := h.lib.RunPending()
	h.mu.Unlock()
	if err != nil {
		h.log.Warn("refresh failed", "err", err)
	}

	u := TimeUpdate{Time: h.clk.Now(), Tick: h.lib.TickCount()}
	if err := h.loop.Post(ClockEvents, TimeUpdated, u, h.opts.PostTimeout); err != nil {
		h.dropped.Add(1)
		if errors.Is(err, event.ErrDeliveryTimeout) {
			h.log.Debug("time update dropped", "err", err)
		} else {
			h.log.Warn("time update dropped", "err", err)
		}
	}

	n, err := h.loop.Dispatch(h.opts.DispatchTimeout)
	h.dispatched.Add(uint64(n))
	if err != nil {
		h.log.Warn("dispatch failed", "err", err)
	}
	h.cycles.Add(1)
}
