package event

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultQueueSize matches the depth the clock posts into: one pending
// update plus one in flight.
const DefaultQueueSize = 2

// LoopOptions configures NewLoop.
type LoopOptions struct {
	QueueSize int
	// Clock drives Post and Dispatch timeouts. Nil uses the real clock.
	Clock clockwork.Clock
}

type subscriber[P any] struct {
	reg  Registration
	base Base
	id   ID
	h    Handler[P]
	arg  any
}

func (s subscriber[P]) matches(base Base, id ID) bool {
	return s.base == base && (s.id == AnyID || s.id == id)
}

// Loop is a bounded FIFO of events with a handler table.
type Loop[P any] struct {
	clock  clockwork.Clock
	queue  chan Event[P]
	closed chan struct{}
	once   sync.Once

	mu      sync.RWMutex
	subs    []subscriber[P]
	nextReg Registration
	done    bool
}

// NewLoop allocates the queue.
func NewLoop[P any](opts LoopOptions) (*Loop[P], error) {
	if opts.QueueSize <= 0 {
		return nil, ErrInvalidQueueSize
	}
	clk := opts.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Loop[P]{
		clock:  clk,
		queue:  make(chan Event[P], opts.QueueSize),
		closed: make(chan struct{}),
	}, nil
}

// Register adds h for (base, id). Handlers registered for the same key run
// in the order they were registered.
func (l *Loop[P]) Register(base Base, id ID, h Handler[P], arg any) (Registration, error) {
	if h == nil {
		return 0, ErrRegistration
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return 0, ErrRegistration
	}
	l.nextReg++
	l.subs = append(l.subs, subscriber[P]{reg: l.nextReg, base: base, id: id, h: h, arg: arg})
	return l.nextReg, nil
}

// Unregister removes a handler. Events already being dispatched may still
// reach it; later ones will not.
func (l *Loop[P]) Unregister(reg Registration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return ErrRegistration
	}
	for i, s := range l.subs {
		if s.reg == reg {
			l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
			return nil
		}
	}
	return ErrRegistration
}

// Post enqueues an event, waiting up to timeout for room. A zero timeout
// only tries once.
func (l *Loop[P]) Post(base Base, id ID, payload P, timeout time.Duration) error {
	select {
	case <-l.closed:
		return ErrClosed
	default:
	}

	ev := Event[P]{Base: base, ID: id, Payload: payload}
	select {
	case l.queue <- ev:
		return nil
	default:
	}
	if timeout <= 0 {
		return ErrDeliveryTimeout
	}

	t := l.clock.NewTimer(timeout)
	defer t.Stop()

	select {
	case l.queue <- ev:
		return nil
	case <-l.closed:
		return ErrClosed
	case <-t.Chan():
		return ErrDeliveryTimeout
	}
}

// Dispatch runs handlers for queued events until the queue is empty or
// timeout has elapsed. The deadline is checked between events; a handler
// that blocks is never interrupted. Only one goroutine may dispatch.
func (l *Loop[P]) Dispatch(timeout time.Duration) (int, error) {
	deadline := l.clock.Now().Add(timeout)
	n := 0
	for {
		select {
		case <-l.closed:
			return n, ErrClosed
		default:
		}

		var ev Event[P]
		select {
		case ev = <-l.queue:
		default:
			return n, nil
		}

		for _, s := range l.snapshot(ev.Base, ev.ID) {
			s.h(s.arg, ev.Base, ev.ID, ev.Payload)
		}
		n++

		if !l.clock.Now().Before(deadline) {
			return n, nil
		}
	}
}

func (l *Loop[P]) snapshot(base Base, id ID) []subscriber[P] {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []subscriber[P]
	for _, s := range l.subs {
		if s.matches(base, id) {
			out = append(out, s)
		}
	}
	return out
}

// Len reports the number of queued events.
func (l *Loop[P]) Len() int { return len(l.queue) }

// Close drops queued events and handlers. Further Post calls return
// ErrClosed. Safe to call more than once.
func (l *Loop[P]) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.done = true
		l.subs = nil
		l.mu.Unlock()
		close(l.closed)
	})
}
