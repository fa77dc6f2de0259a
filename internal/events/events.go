// Package events fans out assignment lifecycle events to subscribers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	AssignmentCompleted = "assignment.completed"
	TrainsBooked        = "trains.booked"
	TrainCreated        = "train.created"
	ParcelCreated       = "parcel.created"
)

// Event is one published occurrence.
type Event struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Time time.Time      `json:"time"`
	Data map[string]any `json:"data,omitempty"`
}

// New creates an event with a fresh id and the current time.
func New(typ string, data map[string]any) Event {
	return Event{
		ID:   uuid.NewString(),
		Type: typ,
		Time: time.Now().UTC(),
		Data: data,
	}
}

// Broker publishes events to every current subscriber. Slow subscribers
// miss events rather than block publishers.
type Broker interface {
	Publish(ctx context.Context, evt Event) error

	// Subscribe returns a channel of events and a function that ends the
	// subscription and closes the channel. The subscription also ends when
	// ctx is done.
	Subscribe(ctx context.Context) (<-chan Event, func())

	Close() error
}

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 16
