package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh id with both timestamps set to now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// BaseAggregateRoot adds the optimistic-lock version and a buffer of events
// raised since the aggregate was loaded. Repositories bump Version on save;
// the application layer drains the buffer after a successful write.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent buffers an event for publication after save
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the buffered events in raise order
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }

// FirmAggregateRoot is an aggregate owned by one firm. Lookups against it
// are always scoped by FirmID.
type FirmAggregateRoot struct {
	BaseAggregateRoot
	FirmID uuid.UUID
}

// NewFirmAggregateRoot creates a version 1 aggregate owned by firmID
func NewFirmAggregateRoot(firmID uuid.UUID) FirmAggregateRoot {
	return FirmAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), FirmID: firmID}
}
