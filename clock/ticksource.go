package clock

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var errTickSourceRunning = errors.New("tick source already running")

// TickSource advances a millisecond counter at a fixed period, independent
// of the display task quantum.
type TickSource struct {
	clk     clockwork.Clock
	period  time.Duration
	advance func(ms uint32)

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewTickSource returns a stopped tick source that calls advance with the
// period in milliseconds on every tick.
func NewTickSource(clk clockwork.Clock, period time.Duration, advance func(ms uint32)) *TickSource {
	return &TickSource{clk: clk, period: period, advance: advance}
}

// Start arms the timer. The period must be at least one millisecond.
func (s *TickSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return errTickSourceRunning
	}
	if s.period < time.Millisecond {
		return fmt.Errorf("tick source: invalid period %v", s.period)
	}
	ms := uint32(s.period / time.Millisecond)

	t := s.clk.NewTicker(s.period)
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.Chan():
				s.advance(ms)
			}
		}
	}()
	return nil
}

// Stop disarms the timer and waits for the tick goroutine to exit. Stopping
// a stopped source is a no-op.
func (s *TickSource) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
