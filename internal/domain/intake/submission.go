package intake

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeSubmission is the aggregate type for submission events
const AggregateTypeSubmission = "IntakeSubmission"

// Submission is one client's filled-in intake form together with its
// signature and payment workflow state.
type Submission struct {
	shared.FirmAggregateRoot
	FormID   uuid.UUID
	ClientID uuid.UUID
	FormData map[string]any

	Requirements    Requirements
	SignatureStatus SignatureStatus
	PaymentStatus   PaymentStatus
	Status          SubmissionStatus

	// Correlation ids, populated once the corresponding gateway flow starts
	EnvelopeID        *string
	CheckoutSessionID *string

	PaymentAmount decimal.NullDecimal
	SignedAt      *time.Time
	PaidAt        *time.Time
}

// NewSubmission records a submission of form by client. Form and client
// must belong to the same firm.
func NewSubmission(form *IntakeForm, client *Client, formData map[string]any) (*Submission, error) {
	if form == nil || client == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Form and client are required")
	}
	if form.FirmID != client.FirmID {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Form and client belong to different firms")
	}
	if formData == nil {
		formData = map[string]any{}
	}

	state := InitialState(form.Requirements())
	s := &Submission{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(form.FirmID),
		FormID:            form.ID,
		ClientID:          client.ID,
		FormData:          formData,
		PaymentAmount:     form.RetainerAmount,
	}
	s.setState(state)
	s.AddDomainEvent(NewSubmissionCreatedEvent(s))
	if s.Status == StatusCompleted {
		s.AddDomainEvent(NewSubmissionStatusEvent(EventTypeSubmissionCompleted, s, ""))
	}
	return s, nil
}

// State returns the workflow state as seen by the transition function
func (s *Submission) State() WorkflowState {
	return WorkflowState{
		Requirements:    s.Requirements,
		SignatureStatus: s.SignatureStatus,
		PaymentStatus:   s.PaymentStatus,
		Status:          s.Status,
		SignedAt:        s.SignedAt,
		PaidAt:          s.PaidAt,
	}
}

func (s *Submission) setState(state WorkflowState) {
	s.Requirements = state.Requirements
	s.SignatureStatus = state.SignatureStatus
	s.PaymentStatus = state.PaymentStatus
	s.Status = state.Status
	s.SignedAt = state.SignedAt
	s.PaidAt = state.PaidAt
}

// Apply feeds signal through Advance. When the state changes the matching
// domain events are recorded. It reports whether anything changed.
func (s *Submission) Apply(signal Signal, now time.Time) bool {
	before := s.Status
	next, changed := Advance(s.State(), signal, now)
	if !changed {
		return false
	}
	s.setState(next)
	s.UpdatedAt = now
	s.recordTransitionEvents(signal, before)
	return true
}

func (s *Submission) recordTransitionEvents(signal Signal, before SubmissionStatus) {
	switch signal {
	case SignalSignatureSent:
		s.AddDomainEvent(NewSubmissionStatusEvent(EventTypeSignatureRequested, s, signal))
	case SignalSignatureSigned:
		s.AddDomainEvent(NewSubmissionStatusEvent(EventTypeSubmissionSigned, s, signal))
	case SignalPaymentSucceeded:
		s.AddDomainEvent(NewSubmissionStatusEvent(EventTypeSubmissionPaid, s, signal))
	case SignalPaymentExpired:
		s.AddDomainEvent(NewSubmissionStatusEvent(EventTypePaymentExpired, s, signal))
	}

	if before == s.Status {
		return
	}
	switch s.Status {
	case StatusCompleted:
		s.AddDomainEvent(NewSubmissionStatusEvent(EventTypeSubmissionCompleted, s, signal))
	case StatusDeclined:
		s.AddDomainEvent(NewSubmissionStatusEvent(EventTypeSubmissionDeclined, s, signal))
	case StatusCancelled:
		s.AddDomainEvent(NewSubmissionStatusEvent(EventTypeSubmissionCancelled, s, signal))
	}
}

// NextStep returns the hint shown to the client after submitting
func (s *Submission) NextStep(paymentURLIssued bool) NextStep {
	switch {
	case s.Status.IsTerminal():
		return NextStepComplete
	case s.Requirements.SignatureRequired && s.SignatureStatus != SignatureSigned:
		return NextStepSignature
	case s.Requirements.PaymentRequired && s.PaymentStatus != PaymentSucceeded && paymentURLIssued:
		return NextStepPayment
	}
	return NextStepComplete
}

// RecordEnvelope stores the signature envelope correlation id
func (s *Submission) RecordEnvelope(envelopeID string) error {
	if envelopeID == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Envelope id is required")
	}
	if s.Status.IsTerminal() {
		return ErrSubmissionClosed
	}
	s.EnvelopeID = &envelopeID
	s.UpdatedAt = time.Now()
	return nil
}

// RecordCheckoutSession stores the payment checkout correlation id
func (s *Submission) RecordCheckoutSession(sessionID string) error {
	if sessionID == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Checkout session id is required")
	}
	s.CheckoutSessionID = &sessionID
	s.UpdatedAt = time.Now()
	return nil
}

// HasEnvelope reports whether a signature envelope was dispatched
func (s *Submission) HasEnvelope() bool {
	return s.EnvelopeID != nil && *s.EnvelopeID != ""
}

// MatchesCheckoutSession reports whether sessionID is the recorded checkout
// session, or whether no session was recorded at all
func (s *Submission) MatchesCheckoutSession(sessionID string) bool {
	if s.CheckoutSessionID == nil || *s.CheckoutSessionID == "" {
		return true
	}
	return *s.CheckoutSessionID == sessionID
}

// RecordDirectSignature stores the signer's typed name and date captured by
// the public signing page. The lifecycle transition is applied separately.
func (s *Submission) RecordDirectSignature(name, date string) {
	data := make(map[string]any, len(s.FormData)+2)
	for k, v := range s.FormData {
		data[k] = v
	}
	data["signature_name"] = name
	data["signature_date"] = date
	s.FormData = data
}
