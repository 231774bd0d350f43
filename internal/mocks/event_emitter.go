package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskboard-api/internal/events"
)

// EventEmitter records emitted events and optionally fails.
type EventEmitter struct {
	mu     sync.Mutex
	Err    error
	events []*events.Event
}

var _ events.EventEmitter = (*EventEmitter)(nil)

// EmitEvent implements events.EventEmitter
func (e *EventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.Err
}

// Events returns a copy of the recorded events.
func (e *EventEmitter) Events() []*events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*events.Event, len(e.events))
	copy(out, e.events)
	return out
}

// Types returns the recorded event types in emission order.
func (e *EventEmitter) Types() []string {
	recorded := e.Events()
	types := make([]string, len(recorded))
	for i, ev := range recorded {
		types[i] = ev.Type
	}
	return types
}
