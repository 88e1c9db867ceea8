package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about a payment or order, published after the
// transaction that produced it has committed.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// EventMeta carries the envelope fields. Concrete events embed it and add
// their payload.
type EventMeta struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	At        time.Time `json:"occurred_at"`
	Aggregate uuid.UUID `json:"aggregate_id"`
	Kind      string    `json:"aggregate_type"`
}

func NewEventMeta(eventType, aggregateType string, aggregateID uuid.UUID) EventMeta {
	return EventMeta{
		ID:        uuid.New(),
		Type:      eventType,
		At:        time.Now().UTC(),
		Aggregate: aggregateID,
		Kind:      aggregateType,
	}
}

func (m EventMeta) EventID() uuid.UUID     { return m.ID }
func (m EventMeta) EventType() string      { return m.Type }
func (m EventMeta) OccurredAt() time.Time  { return m.At }
func (m EventMeta) AggregateID() uuid.UUID { return m.Aggregate }
func (m EventMeta) AggregateType() string  { return m.Kind }

// EventHandler reacts to published events. EventTypes is what the handler
// subscribes to when no explicit types are given; empty means every event.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}
