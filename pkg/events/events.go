// Package events publishes todo change notifications.
package events

import (
	"context"
	"time"

	"github.com/segmentio/ksuid"
)

// Event types
const (
	TodoCreated   = "todo.created"
	TodoDeleted   = "todo.deleted"
	TodoCompleted = "todo.completed"
)

// Event is the payload published after a successful change.
// ID is a time-ordered KSUID consumers can deduplicate on.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Todo      interface{} `json:"todo"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps an event with the current UTC time
func NewEvent(eventType string, todo interface{}) Event {
	return Event{
		ID:        ksuid.New().String(),
		Type:      eventType,
		Todo:      todo,
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher
func (NopPublisher) Close() error { return nil }
