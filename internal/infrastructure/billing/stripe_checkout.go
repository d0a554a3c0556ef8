// Package billing adapts Stripe hosted checkout to the intake payment port.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	intakeapp "github.com/lexflow/backend/internal/application/intake"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	infraconfig "github.com/lexflow/backend/internal/infrastructure/config"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

const provider = "stripe"

// RetainerLineItemName is the product name shown on the checkout page
const RetainerLineItemName = "Legal Retainer Fee"

var (
	ErrWebhookSecretMissing = shared.NewDomainError(shared.CodeUnauthenticated, "Payment webhook secret is not configured")
	ErrInvalidWebhook       = shared.NewDomainError(shared.CodeUnauthenticated, "Invalid payment webhook signature")
)

var _ intakeapp.PaymentGateway = (*StripeCheckoutGateway)(nil)

// StripeCheckoutGateway creates one-off checkout sessions for retainer fees
// and verifies Stripe webhooks. It holds its own API client instead of the
// package-level stripe.Key.
type StripeCheckoutGateway struct {
	api           *client.API
	currency      string
	webhookSecret string
	logger        *zap.Logger
}

// CheckoutOption configures StripeCheckoutGateway
type CheckoutOption func(*checkoutOptions)

type checkoutOptions struct {
	backend stripe.Backend
	logger  *zap.Logger
}

// WithBackend replaces the HTTP backend used for API calls
func WithBackend(backend stripe.Backend) CheckoutOption {
	return func(o *checkoutOptions) {
		o.backend = backend
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) CheckoutOption {
	return func(o *checkoutOptions) {
		o.logger = logger
	}
}

// NewStripeCheckoutGateway creates a gateway from configuration
func NewStripeCheckoutGateway(cfg infraconfig.StripeConfig, opts ...CheckoutOption) (*StripeCheckoutGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	if cfg.TestMode && strings.HasPrefix(cfg.SecretKey, "sk_live") {
		return nil, errors.New("stripe: test mode enabled but secret key is not a test key")
	}

	o := &checkoutOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	backend := o.backend
	if backend == nil && cfg.APIBaseURL != "" {
		backend = stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL: stripe.String(cfg.APIBaseURL),
		})
	}
	var backends *stripe.Backends
	if backend != nil {
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}

	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "usd"
	}

	return &StripeCheckoutGateway{
		api:           client.New(cfg.SecretKey, backends),
		currency:      currency,
		webhookSecret: cfg.WebhookSecret,
		logger:        o.logger,
	}, nil
}

// CreateCheckout creates a hosted checkout session charging req.Amount once
func (g *StripeCheckoutGateway) CreateCheckout(ctx context.Context, req intakeapp.CheckoutRequest) (*intakeapp.CheckoutSession, error) {
	cents := intake.MinorUnits(req.Amount)
	if cents <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Checkout amount must be positive")
	}

	description := req.Description
	if description == "" {
		description = "Retainer fee for legal services"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(RetainerLineItemName),
						Description: stripe.String(description),
					},
					UnitAmount: stripe.Int64(cents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: req.Metadata,
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe checkout session",
			zap.String("submission_id", req.Metadata["submission_id"]),
			zap.Error(err))
		return nil, gatewayError("failed to create checkout session", err)
	}

	g.logger.Info("Created Stripe checkout session",
		zap.String("session_id", session.ID),
		zap.Int64("amount_cents", cents))

	return toCheckoutSession(session), nil
}

// GetCheckout retrieves a checkout session
func (g *StripeCheckoutGateway) GetCheckout(ctx context.Context, sessionID string) (*intakeapp.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, gatewayError("failed to retrieve checkout session", err)
	}
	return toCheckoutSession(session), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
// Checkout session payloads are decoded into Session; other event types
// come back with a nil Session.
func (g *StripeCheckoutGateway) ParseWebhook(payload []byte, signature string) (*intakeapp.PaymentEvent, error) {
	return parseWebhook(g.webhookSecret, payload, signature, g.logger)
}

func parseWebhook(secret string, payload []byte, signature string, logger *zap.Logger) (*intakeapp.PaymentEvent, error) {
	if secret == "" {
		return nil, ErrWebhookSecretMissing
	}
	if signature == "" {
		return nil, ErrInvalidWebhook
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		logger.Warn("Failed to verify Stripe webhook signature", zap.Error(err))
		return nil, ErrInvalidWebhook
	}

	out := &intakeapp.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if strings.HasPrefix(out.Type, "checkout.session.") && event.Data != nil {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Malformed checkout session payload")
		}
		out.Session = toCheckoutSession(&session)
	}
	return out, nil
}

func toCheckoutSession(s *stripe.CheckoutSession) *intakeapp.CheckoutSession {
	return &intakeapp.CheckoutSession{
		SessionID:     s.ID,
		CheckoutURL:   s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
}

func gatewayError(action string, err error) error {
	reason := action
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		reason = action + ": " + stripeErr.Msg
	}
	return intake.NewGatewayError(provider, reason, err)
}
