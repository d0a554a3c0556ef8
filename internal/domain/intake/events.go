package intake

import (
	"github.com/lexflow/backend/internal/domain/shared"
)

// Submission domain event types
const (
	EventTypeSubmissionCreated   = "SubmissionCreated"
	EventTypeSignatureRequested  = "SignatureRequested"
	EventTypeSubmissionSigned    = "SubmissionSigned"
	EventTypeSubmissionPaid      = "SubmissionPaid"
	EventTypeSubmissionCompleted = "SubmissionCompleted"
	EventTypeSubmissionDeclined  = "SubmissionDeclined"
	EventTypeSubmissionCancelled = "SubmissionCancelled"
	EventTypePaymentExpired      = "PaymentExpired"
)

// SubmissionEventTypes lists every submission event type
var SubmissionEventTypes = []string{
	EventTypeSubmissionCreated,
	EventTypeSignatureRequested,
	EventTypeSubmissionSigned,
	EventTypeSubmissionPaid,
	EventTypeSubmissionCompleted,
	EventTypeSubmissionDeclined,
	EventTypeSubmissionCancelled,
	EventTypePaymentExpired,
}

// SubmissionCreatedEvent is published when a client submits a form
type SubmissionCreatedEvent struct {
	shared.BaseDomainEvent
	FormID   string           `json:"form_id"`
	ClientID string           `json:"client_id"`
	Status   SubmissionStatus `json:"status"`
}

// NewSubmissionCreatedEvent creates a new SubmissionCreatedEvent
func NewSubmissionCreatedEvent(s *Submission) *SubmissionCreatedEvent {
	return &SubmissionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubmissionCreated, AggregateTypeSubmission, s.ID, s.FirmID),
		FormID:          s.FormID.String(),
		ClientID:        s.ClientID.String(),
		Status:          s.Status,
	}
}

// SubmissionStatusEvent is published for every workflow milestone
type SubmissionStatusEvent struct {
	shared.BaseDomainEvent
	ClientID        string           `json:"client_id"`
	Signal          Signal           `json:"signal,omitempty"`
	Status          SubmissionStatus `json:"status"`
	SignatureStatus SignatureStatus  `json:"signature_status"`
	PaymentStatus   PaymentStatus    `json:"payment_status"`
}

// NewSubmissionStatusEvent creates a milestone event of the given type
func NewSubmissionStatusEvent(eventType string, s *Submission, signal Signal) *SubmissionStatusEvent {
	return &SubmissionStatusEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeSubmission, s.ID, s.FirmID),
		ClientID:        s.ClientID.String(),
		Signal:          signal,
		Status:          s.Status,
		SignatureStatus: s.SignatureStatus,
		PaymentStatus:   s.PaymentStatus,
	}
}
