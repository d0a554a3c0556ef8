package intake

import "time"

// Signal is an external fact about a submission's signature or payment flow.
// Webhooks, status polls and the public sign/pay endpoints all reduce to one.
type Signal string

const (
	SignalSignatureSent      Signal = "signature_sent"
	SignalSignatureDelivered Signal = "signature_delivered"
	SignalSignatureSigned    Signal = "signature_signed"
	SignalSignatureDeclined  Signal = "signature_declined"
	SignalSignatureVoided    Signal = "signature_voided"
	SignalPaymentSucceeded   Signal = "payment_succeeded"
	SignalPaymentFailed      Signal = "payment_failed"
	SignalPaymentExpired     Signal = "payment_expired"
)

// IsSignature reports whether the signal belongs to the signature flow
func (s Signal) IsSignature() bool {
	switch s {
	case SignalSignatureSent, SignalSignatureDelivered, SignalSignatureSigned, SignalSignatureDeclined, SignalSignatureVoided:
		return true
	}
	return false
}

// Requirements is the snapshot of what a form demanded when the submission was made
type Requirements struct {
	SignatureRequired bool
	PaymentRequired   bool
}

// WorkflowState is everything the transition function reads and writes
type WorkflowState struct {
	Requirements    Requirements
	SignatureStatus SignatureStatus
	PaymentStatus   PaymentStatus
	Status          SubmissionStatus
	SignedAt        *time.Time
	PaidAt          *time.Time
}

// InitialState returns the state of a freshly created submission
func InitialState(req Requirements) WorkflowState {
	return WorkflowState{
		Requirements:    req,
		SignatureStatus: SignaturePending,
		PaymentStatus:   PaymentPending,
		Status:          DeriveStatus(req, SignaturePending, PaymentPending),
	}
}

// DeriveStatus computes the aggregate status. It is the only place that
// decides between completed, awaiting_payment and the other statuses.
func DeriveStatus(req Requirements, sig SignatureStatus, pay PaymentStatus) SubmissionStatus {
	switch sig {
	case SignatureDeclined:
		return StatusDeclined
	case SignatureVoided:
		return StatusCancelled
	}

	signatureDone := !req.SignatureRequired || sig == SignatureSigned
	paymentDone := !req.PaymentRequired || pay == PaymentSucceeded
	if signatureDone && paymentDone {
		return StatusCompleted
	}

	switch {
	case pay == PaymentSucceeded:
		return StatusPaymentCompleted
	case pay == PaymentExpired:
		return StatusPaymentExpired
	case sig == SignatureSigned:
		return StatusAwaitingPayment
	case sig == SignatureSent || sig == SignatureDelivered:
		return StatusAwaitingSignature
	}
	return StatusSubmitted
}

// Advance applies signal to state and reports whether anything changed.
// Sub-statuses only move forward; a signal that would not move them is a
// no-op, which makes redelivery of the same signal idempotent. Terminal
// submissions ignore every signal.
func Advance(state WorkflowState, signal Signal, now time.Time) (WorkflowState, bool) {
	if state.Status.IsTerminal() {
		return state, false
	}

	next := state
	switch signal {
	case SignalSignatureSent:
		if state.SignatureStatus != SignaturePending {
			return state, false
		}
		next.SignatureStatus = SignatureSent
	case SignalSignatureDelivered:
		if state.SignatureStatus != SignatureSent {
			return state, false
		}
		next.SignatureStatus = SignatureDelivered
	case SignalSignatureSigned:
		if state.SignatureStatus.IsFinal() {
			return state, false
		}
		next.SignatureStatus = SignatureSigned
		next.SignedAt = &now
	case SignalSignatureDeclined:
		if !state.SignatureStatus.InFlight() {
			return state, false
		}
		next.SignatureStatus = SignatureDeclined
	case SignalSignatureVoided:
		if !state.SignatureStatus.InFlight() {
			return state, false
		}
		next.SignatureStatus = SignatureVoided
	case SignalPaymentSucceeded:
		if state.PaymentStatus == PaymentSucceeded {
			return state, false
		}
		next.PaymentStatus = PaymentSucceeded
		next.PaidAt = &now
	case SignalPaymentFailed:
		if state.PaymentStatus != PaymentPending {
			return state, false
		}
		next.PaymentStatus = PaymentFailed
	case SignalPaymentExpired:
		if state.PaymentStatus != PaymentPending {
			return state, false
		}
		next.PaymentStatus = PaymentExpired
	default:
		return state, false
	}

	next.Status = DeriveStatus(next.Requirements, next.SignatureStatus, next.PaymentStatus)
	return next, true
}
