// Package framework provides the cooperative poll loop the relay runs
// on: controllers executed in priority order on a fixed tick, with
// messages queued between iterations and background runnables
// supervised alongside.
package framework

import (
	"context"
	"time"
)

// Runnable is a background worker driven by a context.
type Runnable interface {
	Run(context.Context) error
}

// Message is a value posted to the loop for controllers to consume.
type Message interface{}

// Controller is one unit of per-tick logic.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// TimeSource provides the sample time of the current iteration, so all
// controllers in one tick observe the same clock reading.
type TimeSource interface {
	Time() time.Time
}

// ControlContext is handed to controllers on each iteration.
type ControlContext interface {
	TimeSource
	// Context retrieves the loop's context.Context.
	Context() context.Context
	// Messages retrieves the messages collected when this iteration
	// started.
	Messages() MessageStore

	LoopControl
}

// LoopControl exposes loop access safe to use from outside iterations,
// e.g. from Runnables.
type LoopControl interface {
	// PostMessage enqueues a message for the next iteration.
	PostMessage(Message)
	// TriggerNext schedules an iteration immediately instead of
	// waiting for the tick.
	TriggerNext()
}

// MessageStore gives controllers access to the pending messages.
type MessageStore interface {
	// ProcessMessages runs the processor over all pending messages.
	// Messages not taken stay queued for the next iteration.
	ProcessMessages(MessageProcessor)
}

// MessageProcessor examines one message and reports whether it was
// taken.
type MessageProcessor interface {
	ProcessMessage(Message) bool
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(Message) bool

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(msg Message) bool {
	return f(msg)
}

// PriorityLevels is the number of controller priority levels.
const PriorityLevels int = 4

// Priority levels, ordered by execution within one iteration.
const (
	// PrLvPoll samples pins and drains inbound queues.
	PrLvPoll int = 0
	// PrLvControl applies state changes.
	PrLvControl int = 1
	// PrLvRender pushes state to the display.
	PrLvRender int = 2
	// PrLvIdle runs after everything else.
	PrLvIdle int = 3
)
