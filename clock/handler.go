package clock

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"dclock/event"
)

// DefaultTimeLayout shows the date above the time: "19.10.2026\n14:03:59".
const DefaultTimeLayout = "02.01.2006\n15:04:05"

// TextSetter is the part of a Handle a clock face needs.
type TextSetter interface {
	SetText(text string) error
}

// TimeLabelHandler formats each TimeUpdate in a location and layout and
// writes it to a label. Location and layout may change while it is
// registered.
type TimeLabelHandler struct {
	target TextSetter
	log    *slog.Logger

	mu     sync.Mutex
	loc    *time.Location
	layout string
}

// NewTimeLabelHandler returns a handler writing to target. A nil loc
// means time.Local; an empty layout means DefaultTimeLayout.
func NewTimeLabelHandler(target TextSetter, loc *time.Location, layout string, log *slog.Logger) *TimeLabelHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	f := &TimeLabelHandler{target: target, log: log}
	f.SetLocation(loc)
	f.SetLayout(layout)
	return f
}

func (f *TimeLabelHandler) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	f.mu.Lock()
	f.loc = loc
	f.mu.Unlock()
}

func (f *TimeLabelHandler) SetLayout(layout string) {
	if layout == "" {
		layout = DefaultTimeLayout
	}
	f.mu.Lock()
	f.layout = layout
	f.mu.Unlock()
}

// Format renders t the way Handle would show it.
func (f *TimeLabelHandler) Format(t time.Time) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return t.In(f.loc).Format(f.layout)
}

// Handle is an event.Handler for ClockEvents.
func (f *TimeLabelHandler) Handle(_ any, _ event.Base, _ event.ID, u TimeUpdate) {
	if err := f.target.SetText(f.Format(u.Time)); err != nil && !errors.Is(err, ErrClosed) {
		f.log.Warn("set clock text failed", "err", err)
	}
}
