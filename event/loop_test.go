package event

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

const testBase Base = "TEST_EVENTS"

func newTestLoop(t *testing.T, size int) *Loop[int] {
	t.Helper()
	l, err := NewLoop[int](LoopOptions{QueueSize: size})
	if err != nil {
		t.Fatalf("NewLoop() error = %v", err)
	}
	t.Cleanup(l.Close)
	return l
}

func TestNewLoopRejectsBadQueueSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := NewLoop[int](LoopOptions{QueueSize: size}); !errors.Is(err, ErrInvalidQueueSize) {
			t.Fatalf("NewLoop(size=%d) error = %v, want ErrInvalidQueueSize", size, err)
		}
	}
}

func TestDispatchOrder(t *testing.T) {
	l := newTestLoop(t, 4)

	var got []string
	for _, name := range []string{"h1", "h2", "h3"} {
		if _, err := l.Register(testBase, AnyID, func(arg any, _ Base, _ ID, _ int) {
			got = append(got, arg.(string))
		}, name); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	for i := 0; i < 2; i++ {
		if err := l.Post(testBase, ID(i), i, 0); err != nil {
			t.Fatalf("Post(%d) error = %v", i, err)
		}
	}
	n, err := l.Dispatch(time.Second)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Dispatch() handled %d events, want 2", n)
	}

	want := []string{"h1", "h2", "h3", "h1", "h2", "h3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDispatchMatchesBaseAndID(t *testing.T) {
	l := newTestLoop(t, 4)

	var exact, wild, other int
	l.Register(testBase, 7, func(any, Base, ID, int) { exact++ }, nil)
	l.Register(testBase, AnyID, func(any, Base, ID, int) { wild++ }, nil)
	l.Register("OTHER", AnyID, func(any, Base, ID, int) { other++ }, nil)

	l.Post(testBase, 7, 0, 0)
	l.Post(testBase, 8, 0, 0)
	l.Dispatch(time.Second)

	if exact != 1 || wild != 2 || other != 0 {
		t.Fatalf("exact=%d wild=%d other=%d, want 1 2 0", exact, wild, other)
	}
}

func TestPayloadCopiedAtPost(t *testing.T) {
	l, err := NewLoop[[2]int](LoopOptions{QueueSize: 1})
	if err != nil {
		t.Fatalf("NewLoop() error = %v", err)
	}
	defer l.Close()

	var got [2]int
	l.Register(testBase, AnyID, func(_ any, _ Base, _ ID, p [2]int) { got = p }, nil)

	p := [2]int{1, 2}
	l.Post(testBase, 0, p, 0)
	p[0] = 99
	l.Dispatch(time.Second)

	if got != [2]int{1, 2} {
		t.Fatalf("payload = %v, want [1 2]", got)
	}
}

func TestPostFullQueueTimesOut(t *testing.T) {
	l := newTestLoop(t, 1)

	if err := l.Post(testBase, 0, 1, 0); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	const timeout = 50 * time.Millisecond
	start := time.Now()
	err := l.Post(testBase, 0, 2, timeout)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrDeliveryTimeout) {
		t.Fatalf("Post() error = %v, want ErrDeliveryTimeout", err)
	}
	if elapsed < timeout {
		t.Fatalf("Post() returned after %v, want >= %v", elapsed, timeout)
	}
	if elapsed > timeout+time.Second {
		t.Fatalf("Post() returned after %v, want about %v", elapsed, timeout)
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
}

func TestPostWaitsForRoom(t *testing.T) {
	clk := clockwork.NewFakeClock()
	l, err := NewLoop[int](LoopOptions{QueueSize: 1, Clock: clk})
	if err != nil {
		t.Fatalf("NewLoop() error = %v", err)
	}
	defer l.Close()

	l.Post(testBase, 0, 1, 0)

	done := make(chan error, 1)
	go func() { done <- l.Post(testBase, 0, 2, time.Second) }()

	select {
	case err := <-done:
		t.Fatalf("Post() returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	var got []int
	l.Register(testBase, AnyID, func(_ any, _ Base, _ ID, p int) { got = append(got, p) }, nil)
	l.Dispatch(time.Second)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for blocked Post")
	}
	l.Dispatch(time.Second)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}
}

func TestDispatchEmptyReturnsImmediately(t *testing.T) {
	l := newTestLoop(t, 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		n, err := l.Dispatch(time.Hour)
		if n != 0 || err != nil {
			t.Errorf("Dispatch() = %d, %v, want 0, nil", n, err)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Dispatch() blocked on an empty queue")
	}
}

func TestDispatchStopsAtDeadline(t *testing.T) {
	clk := clockwork.NewFakeClock()
	l, err := NewLoop[int](LoopOptions{QueueSize: 4, Clock: clk})
	if err != nil {
		t.Fatalf("NewLoop() error = %v", err)
	}
	defer l.Close()

	calls := 0
	l.Register(testBase, AnyID, func(any, Base, ID, int) {
		calls++
		clk.Advance(time.Second)
	}, nil)

	for i := 0; i < 3; i++ {
		l.Post(testBase, 0, i, 0)
	}
	n, err := l.Dispatch(time.Second)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if n != 1 || calls != 1 {
		t.Fatalf("Dispatch() handled %d (calls %d), want 1", n, calls)
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	l := newTestLoop(t, 2)

	calls := 0
	reg, err := l.Register(testBase, AnyID, func(any, Base, ID, int) { calls++ }, nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	l.Post(testBase, 0, 0, 0)
	l.Dispatch(time.Second)
	if err := l.Unregister(reg); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	l.Post(testBase, 0, 0, 0)
	l.Dispatch(time.Second)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if err := l.Unregister(reg); !errors.Is(err, ErrRegistration) {
		t.Fatalf("second Unregister() error = %v, want ErrRegistration", err)
	}
}

func TestUnregisterFromHandler(t *testing.T) {
	l := newTestLoop(t, 2)

	var reg Registration
	calls := 0
	reg, _ = l.Register(testBase, AnyID, func(any, Base, ID, int) {
		calls++
		if err := l.Unregister(reg); err != nil {
			t.Errorf("Unregister() error = %v", err)
		}
	}, nil)

	l.Post(testBase, 0, 0, 0)
	l.Post(testBase, 0, 0, 0)
	l.Dispatch(time.Second)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestClosedLoop(t *testing.T) {
	l := newTestLoop(t, 1)
	reg, _ := l.Register(testBase, AnyID, func(any, Base, ID, int) {}, nil)

	l.Close()
	l.Close()

	if err := l.Post(testBase, 0, 0, time.Second); !errors.Is(err, ErrClosed) {
		t.Fatalf("Post() error = %v, want ErrClosed", err)
	}
	if _, err := l.Dispatch(time.Second); !errors.Is(err, ErrClosed) {
		t.Fatalf("Dispatch() error = %v, want ErrClosed", err)
	}
	if _, err := l.Register(testBase, AnyID, func(any, Base, ID, int) {}, nil); !errors.Is(err, ErrRegistration) {
		t.Fatalf("Register() error = %v, want ErrRegistration", err)
	}
	if err := l.Unregister(reg); !errors.Is(err, ErrRegistration) {
		t.Fatalf("Unregister() error = %v, want ErrRegistration", err)
	}
}

func TestConcurrentPosters(t *testing.T) {
	const (
		producers = 4
		perProd   = 250
	)
	l := newTestLoop(t, 2)

	seen := make(map[int]bool)
	l.Register(testBase, AnyID, func(_ any, _ Base, _ ID, p int) {
		if seen[p] {
			t.Errorf("duplicate payload %d", p)
		}
		seen[p] = true
	}, nil)

	var wg sync.WaitGroup
	wg.Add(producers)
	for pid := 0; pid < producers; pid++ {
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < perProd; i++ {
				if err := l.Post(testBase, 0, pid*perProd+i, 5*time.Second); err != nil {
					t.Errorf("Post() error = %v", err)
					return
				}
			}
		}(pid)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	deadline := time.After(10 * time.Second)
	for {
		l.Dispatch(time.Second)
		select {
		case <-done:
			l.Dispatch(time.Second)
			if len(seen) != producers*perProd {
				t.Fatalf("saw %d events, want %d", len(seen), producers*perProd)
			}
			return
		case <-deadline:
			t.Fatalf("timeout: saw %d events", len(seen))
		default:
		}
	}
}
