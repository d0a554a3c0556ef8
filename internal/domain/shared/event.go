package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to an aggregate. Every event
// carries the owning firm so subscribers never cross tenants.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	FirmID() uuid.UUID
}

// BaseDomainEvent implements the DomainEvent accessors; concrete events
// embed it and add their payload.
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Aggregate struct {
		ID   uuid.UUID `json:"id"`
		Type string    `json:"type"`
	} `json:"aggregate"`
	Firm uuid.UUID `json:"firm_id"`
}

// NewBaseDomainEvent stamps a new event id and time
func NewBaseDomainEvent(eventType, aggregateType string, aggregateID, firmID uuid.UUID) BaseDomainEvent {
	e := BaseDomainEvent{ID: uuid.New(), Type: eventType, Timestamp: time.Now(), Firm: firmID}
	e.Aggregate.ID = aggregateID
	e.Aggregate.Type = aggregateType
	return e
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Aggregate.ID }
func (e *BaseDomainEvent) AggregateType() string  { return e.Aggregate.Type }
func (e *BaseDomainEvent) FirmID() uuid.UUID      { return e.Firm }
