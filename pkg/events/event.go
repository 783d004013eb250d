package events

import (
	"context"
	"time"
)

const (
	// DocumentIndexed is emitted once a document's chunks are replaced.
	DocumentIndexed = "DOCUMENT_INDEXED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INDEXED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher sends events to the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewDocumentIndexed(documentID string, chunks, tokens int, origin string) BaseEvent {
	now := time.Now().UTC()
	return BaseEvent{
		Type: DocumentIndexed,
		Data: map[string]interface{}{
			"document_id": documentID,
			"chunks":      chunks,
			"tokens":      tokens,
			"origin":      origin,
			"occurred_at": now.Format(time.RFC3339Nano),
		},
		OccurredAt: now,
	}
}

// StringField reads a string payload value, empty when absent.
func StringField(e Event, key string) string {
	if v, ok := e.Payload()[key].(string); ok {
		return v
	}
	return ""
}
