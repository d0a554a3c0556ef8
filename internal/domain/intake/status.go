package intake

// SignatureStatus tracks the e-signature sub-flow of a submission.
// Ordering: pending < sent < delivered < signed; declined and voided are
// terminal alternates.
type SignatureStatus string

const (
	SignaturePending   SignatureStatus = "pending"
	SignatureSent      SignatureStatus = "sent"
	SignatureDelivered SignatureStatus = "delivered"
	SignatureSigned    SignatureStatus = "signed"
	SignatureDeclined  SignatureStatus = "declined"
	SignatureVoided    SignatureStatus = "voided"
)

// IsValid reports whether s is a known signature status
func (s SignatureStatus) IsValid() bool {
	switch s {
	case SignaturePending, SignatureSent, SignatureDelivered, SignatureSigned, SignatureDeclined, SignatureVoided:
		return true
	}
	return false
}

// IsFinal reports whether no further signature signal can move s
func (s SignatureStatus) IsFinal() bool {
	return s == SignatureSigned || s == SignatureDeclined || s == SignatureVoided
}

// InFlight reports whether an envelope is out with the signer
func (s SignatureStatus) InFlight() bool {
	return s == SignatureSent || s == SignatureDelivered
}

// PaymentStatus tracks the checkout sub-flow of a submission.
// Ordering: pending < {failed, expired} < succeeded. A failed or expired
// checkout may still be followed by a succeeded one once the firm re-issues it.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
)

// IsValid reports whether s is a known payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentSucceeded, PaymentFailed, PaymentExpired:
		return true
	}
	return false
}

// SubmissionStatus is the aggregate workflow status. It is always derived
// from the requirements snapshot and the two sub-statuses, never set directly.
type SubmissionStatus string

const (
	StatusSubmitted         SubmissionStatus = "submitted"
	StatusAwaitingSignature SubmissionStatus = "awaiting_signature"
	StatusAwaitingPayment   SubmissionStatus = "awaiting_payment"
	StatusPaymentCompleted  SubmissionStatus = "payment_completed"
	StatusPaymentExpired    SubmissionStatus = "payment_expired"
	StatusCompleted         SubmissionStatus = "completed"
	StatusDeclined          SubmissionStatus = "declined"
	StatusCancelled         SubmissionStatus = "cancelled"
	StatusRejected          SubmissionStatus = "rejected"
)

// IsValid reports whether s is a known submission status
func (s SubmissionStatus) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusAwaitingSignature, StatusAwaitingPayment, StatusPaymentCompleted,
		StatusPaymentExpired, StatusCompleted, StatusDeclined, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the submission accepts no further signals
func (s SubmissionStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusDeclined, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// NextStep is the hint returned to the submitting client
type NextStep string

const (
	NextStepSignature NextStep = "signature"
	NextStepPayment   NextStep = "payment"
	NextStepComplete  NextStep = "complete"
)
