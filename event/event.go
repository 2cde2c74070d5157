// Package event implements a bounded event queue with a handler registry.
//
// A Loop is fed by any number of producers through Post and drained by a
// single consumer through Dispatch. Handlers run on the consumer goroutine,
// in registration order.
package event

import "errors"

var (
	ErrClosed           = errors.New("event: loop closed")
	ErrDeliveryTimeout  = errors.New("event: delivery timed out")
	ErrRegistration     = errors.New("event: registration failed")
	ErrInvalidQueueSize = errors.New("event: queue size must be positive")
)

// Base names a family of events.
type Base string

// ID identifies one event inside a Base.
type ID int32

// AnyID subscribes a handler to every ID of a Base.
const AnyID ID = -1

// Event is one queued notification. The payload is copied at post time.
type Event[P any] struct {
	Base    Base
	ID      ID
	Payload P
}

// Handler is invoked on the dispatching goroutine. arg is the value passed
// to Register.
type Handler[P any] func(arg any, base Base, id ID, payload P)

// Registration identifies one Register call; Go funcs are not comparable,
// so it is what Unregister takes.
type Registration uint64
