package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the task service.
const (
	TaskCreated  = "task.created"
	TaskAssigned = "task.assigned"
	TaskDeleted  = "task.deleted"
)

// Event records something that happened to a task.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	TaskID     int64           `json:"taskId"`
	ActorID    int64           `json:"actorId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// NewEvent creates an Event with a fresh ID, serializing payload as JSON.
// A nil payload leaves Payload empty.
func NewEvent(eventType string, taskID, actorID int64, payload interface{}) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		TaskID:     taskID,
		ActorID:    actorID,
		Payload:    raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// AssignmentPayload accompanies TaskAssigned events.
type AssignmentPayload struct {
	PreviousAssigneeID *int64 `json:"previousAssigneeId"`
	AssigneeID         *int64 `json:"assigneeId"`
}

// TaskPayload accompanies TaskCreated and TaskDeleted events.
type TaskPayload struct {
	Name        string `json:"name"`
	CreatedByID int64  `json:"createdById"`
}

// EventHandler processes emitted events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events to handlers without the publisher knowing them.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
