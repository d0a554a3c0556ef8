package billing

import (
	"context"

	intakeapp "github.com/lexflow/backend/internal/application/intake"
	"github.com/lexflow/backend/internal/domain/intake"
	"go.uber.org/zap"
)

// DisabledPaymentGateway stands in when no Stripe secret key is configured.
// Checkout calls fail with a gateway error so best-effort callers can skip
// payment. Webhooks are still verified when a webhook secret is present.
type DisabledPaymentGateway struct {
	webhookSecret string
	logger        *zap.Logger
}

var _ intakeapp.PaymentGateway = (*DisabledPaymentGateway)(nil)

// NewDisabledPaymentGateway creates a DisabledPaymentGateway
func NewDisabledPaymentGateway(webhookSecret string, logger *zap.Logger) *DisabledPaymentGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisabledPaymentGateway{webhookSecret: webhookSecret, logger: logger}
}

func (g *DisabledPaymentGateway) CreateCheckout(context.Context, intakeapp.CheckoutRequest) (*intakeapp.CheckoutSession, error) {
	return nil, intake.NewGatewayError(provider, "payment provider not configured", nil)
}

func (g *DisabledPaymentGateway) GetCheckout(context.Context, string) (*intakeapp.CheckoutSession, error) {
	return nil, intake.NewGatewayError(provider, "payment provider not configured", nil)
}

func (g *DisabledPaymentGateway) ParseWebhook(payload []byte, signature string) (*intakeapp.PaymentEvent, error) {
	return parseWebhook(g.webhookSecret, payload, signature, g.logger)
}
