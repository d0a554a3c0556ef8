package intake

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EnvelopeRequest describes a single-signer envelope
type EnvelopeRequest struct {
	SignerEmail  string
	SignerName   string
	DocumentName string
	// FileExtension defaults to pdf
	FileExtension string
	Document      []byte
	ReturnURL     string
	// Metadata is attached to the envelope as custom fields
	Metadata map[string]string
}

// Envelope is the provider's answer to a create request
type Envelope struct {
	EnvelopeID string
	Status     string
}

// Remote envelope statuses reported by the signature provider
const (
	EnvelopeStatusSent      = "sent"
	EnvelopeStatusDelivered = "delivered"
	EnvelopeStatusCompleted = "completed"
	EnvelopeStatusDeclined  = "declined"
	EnvelopeStatusVoided    = "voided"
)

// EnvelopeStatus is a status lookup result
type EnvelopeStatus struct {
	EnvelopeID    string
	Status        string
	SentAt        *time.Time
	DeliveredAt   *time.Time
	CompletedAt   *time.Time
	DeclinedAt    *time.Time
	VoidedAt      *time.Time
	StatusChanged *time.Time
}

// SignatureGateway is the e-signature provider. Errors are *intake.GatewayError
// and are never retried by the gateway itself.
type SignatureGateway interface {
	CreateEnvelope(ctx context.Context, req EnvelopeRequest) (*Envelope, error)
	GetEnvelopeStatus(ctx context.Context, envelopeID string) (*EnvelopeStatus, error)
}

// SignatureWebhookVerifier authenticates signature provider callbacks
type SignatureWebhookVerifier interface {
	Verify(payload []byte, signature string) error
}

// CheckoutRequest describes a one-off hosted checkout
type CheckoutRequest struct {
	Amount        decimal.Decimal
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSession is a hosted checkout created at the payment provider
type CheckoutSession struct {
	SessionID     string
	CheckoutURL   string
	Status        string
	PaymentStatus string
	Metadata      map[string]string
}

// Payment webhook event types handled by the lifecycle
const (
	PaymentEventCheckoutCompleted      = "checkout.session.completed"
	PaymentEventCheckoutExpired        = "checkout.session.expired"
	PaymentEventAsyncPaymentSucceeded  = "checkout.session.async_payment_succeeded"
	PaymentEventAsyncPaymentFailed     = "checkout.session.async_payment_failed"
	CheckoutPaymentStatusPaid          = "paid"
	CheckoutPaymentStatusUnpaid        = "unpaid"
	CheckoutPaymentStatusNoPaymentReqd = "no_payment_required"
)

// PaymentEvent is a verified payment provider webhook
type PaymentEvent struct {
	ID      string
	Type    string
	Session *CheckoutSession
}

// PaymentGateway is the payment provider
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error)
	// ParseWebhook verifies the signature header and decodes the event.
	// A verification failure is an UNAUTHENTICATED domain error.
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}

// ObjectStorage stores document blobs
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
	GetBucket() string
}
