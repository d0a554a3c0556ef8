package esign

import (
	"context"

	intakeapp "github.com/lexflow/backend/internal/application/intake"
	"github.com/lexflow/backend/internal/domain/intake"
)

// DisabledSignatureGateway stands in when DocuSign is not configured
type DisabledSignatureGateway struct{}

var _ intakeapp.SignatureGateway = DisabledSignatureGateway{}

func (DisabledSignatureGateway) CreateEnvelope(context.Context, intakeapp.EnvelopeRequest) (*intakeapp.Envelope, error) {
	return nil, intake.NewGatewayError(provider, "DocuSign not configured", nil)
}

func (DisabledSignatureGateway) GetEnvelopeStatus(context.Context, string) (*intakeapp.EnvelopeStatus, error) {
	return nil, intake.NewGatewayError(provider, "DocuSign not configured", nil)
}
