// Package clock runs a text clock on a panel.
//
// A Handle owns the graphics library instance, the draw buffers, the event
// loop and the display task. The task refreshes the panel every quantum,
// posts a TimeUpdated event and dispatches it to registered handlers, which
// typically call SetText.
package clock

import (
	"errors"
	"time"

	"dclock/event"
)

var (
	ErrAllocation   = errors.New("clock: allocation failed")
	ErrTaskCreation = errors.New("clock: task creation failed")
	ErrDriver       = errors.New("clock: display driver failed")
	ErrClosed       = errors.New("clock: handle closed")
)

// ClockEvents is the event base handlers subscribe to.
const ClockEvents event.Base = "DIGITAL_CLOCK_EVENT"

// TimeUpdated is posted once per display task cycle.
const TimeUpdated event.ID = 0

// TimeUpdate is the TimeUpdated payload.
type TimeUpdate struct {
	// Time is the clock reading taken after the refresh.
	Time time.Time
	// Tick is the graphics tick count at the same moment.
	Tick uint32
}

// Handler receives clock events on the display task goroutine.
type Handler = event.Handler[TimeUpdate]

const (
	DefaultQueueSize       = event.DefaultQueueSize
	DefaultQuantum         = 10 * time.Millisecond
	DefaultTickPeriod      = time.Millisecond
	DefaultPostTimeout     = time.Second
	DefaultDispatchTimeout = time.Second
	DefaultInitialText     = "Hello, there!"

	// defaultColorRows is the draw buffer height for color panels.
	defaultColorRows = 40
)

// TaskState is the display task lifecycle.
type TaskState int32

const (
	TaskInitializing TaskState = iota
	TaskRunning
	TaskStopped
)

func (s TaskState) String() string {
	switch s {
	case TaskInitializing:
		return "initializing"
	case TaskRunning:
		return "running"
	case TaskStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats are display task counters.
type Stats struct {
	Cycles       uint64
	DroppedPosts uint64
	Dispatched   uint64
	Refreshes    uint64
	Flushes      uint64
}
