package identity

import (
	"github.com/lexflow/backend/internal/domain/shared"
)

// AggregateTypeFirm is the aggregate type for firm events
const AggregateTypeFirm = "Firm"

// EventTypeFirmRegistered is published when a firm signs up
const EventTypeFirmRegistered = "FirmRegistered"

// FirmRegisteredEvent is published when a firm signs up
type FirmRegisteredEvent struct {
	shared.BaseDomainEvent
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewFirmRegisteredEvent creates a new FirmRegisteredEvent
func NewFirmRegisteredEvent(firm *Firm) *FirmRegisteredEvent {
	return &FirmRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFirmRegistered, AggregateTypeFirm, firm.ID, firm.ID),
		Name:            firm.Name,
		Email:           firm.Email,
	}
}
