package intake

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Signature provider webhook event names
const (
	SignatureEventSent      = "envelope-sent"
	SignatureEventDelivered = "envelope-delivered"
	SignatureEventCompleted = "envelope-completed"
	SignatureEventDeclined  = "envelope-declined"
	SignatureEventVoided    = "envelope-voided"
)

var signatureEventSignals = map[string]intake.Signal{
	SignatureEventSent:      intake.SignalSignatureSent,
	SignatureEventDelivered: intake.SignalSignatureDelivered,
	SignatureEventCompleted: intake.SignalSignatureSigned,
	SignatureEventDeclined:  intake.SignalSignatureDeclined,
	SignatureEventVoided:    intake.SignalSignatureVoided,
}

// remoteStatusSignal maps a polled envelope status onto a signal
var remoteStatusSignal = map[string]intake.Signal{
	EnvelopeStatusDelivered: intake.SignalSignatureDelivered,
	EnvelopeStatusCompleted: intake.SignalSignatureSigned,
	EnvelopeStatusDeclined:  intake.SignalSignatureDeclined,
	EnvelopeStatusVoided:    intake.SignalSignatureVoided,
}

// RemoteStatusNotRequested is reported when no envelope was ever sent
const RemoteStatusNotRequested = "not_requested"

// SignatureService sends retainers for e-signature and reconciles envelope
// status from polls and webhooks
type SignatureService struct {
	engine         *LifecycleEngine
	submissions    intake.SubmissionRepository
	clients        intake.ClientRepository
	documents      intake.DocumentRepository
	storage        ObjectStorage
	gateway        SignatureGateway
	verifier       SignatureWebhookVerifier
	links          Links
	gatewayTimeout time.Duration
	logger         *zap.Logger
}

// NewSignatureService creates a new SignatureService. verifier may be nil
// when webhook signing is not configured.
func NewSignatureService(
	engine *LifecycleEngine,
	submissions intake.SubmissionRepository,
	clients intake.ClientRepository,
	documents intake.DocumentRepository,
	storage ObjectStorage,
	gateway SignatureGateway,
	verifier SignatureWebhookVerifier,
	links Links,
	gatewayTimeout time.Duration,
	logger *zap.Logger,
) *SignatureService {
	return &SignatureService{
		engine:         engine,
		submissions:    submissions,
		clients:        clients,
		documents:      documents,
		storage:        storage,
		gateway:        gateway,
		verifier:       verifier,
		links:          links,
		gatewayTimeout: gatewayTimeout,
		logger:         logger,
	}
}

// RequestSignature sends the submission's retainer document to the client
// for e-signature. Gateway failures are returned to the caller.
func (s *SignatureService) RequestSignature(ctx context.Context, firmID, submissionID uuid.UUID) (*SignatureRequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "signature", "request",
		telemetry.SpanAttrFirmID, firmID.String(),
		telemetry.SpanAttrSubmissionID, submissionID.String())
	defer span.End()

	sub, err := s.submissions.FindByIDForFirm(ctx, firmID, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.SignatureStatus == intake.SignatureSigned {
		return nil, intake.ErrAlreadySigned
	}
	if sub.Status.IsTerminal() {
		return nil, intake.ErrSubmissionClosed
	}
	doc, err := s.documents.FindRetainer(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.FindByIDForFirm(ctx, firmID, sub.ClientID)
	if err != nil {
		return nil, err
	}

	var content []byte
	err = callGateway(ctx, s.gatewayTimeout, s.engine.Metrics(), ProviderStorage, "download", func(ctx context.Context) error {
		var err error
		content, err = s.storage.Download(ctx, doc.StorageKey)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	signerName := client.FullName()
	if signerName == "" {
		signerName = client.Email
	}
	var envelope *Envelope
	err = callGateway(ctx, s.gatewayTimeout, s.engine.Metrics(), ProviderSignature, "create_envelope", func(ctx context.Context) error {
		var err error
		envelope, err = s.gateway.CreateEnvelope(ctx, EnvelopeRequest{
			SignerEmail:   client.Email,
			SignerName:    signerName,
			DocumentName:  doc.Filename,
			FileExtension: fileExtension(doc.Filename),
			Document:      content,
			ReturnURL:     s.links.SignatureComplete(sub.ID),
			Metadata:      map[string]string{"submission_id": sub.ID.String()},
		})
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to create signature envelope",
			zap.String("submission_id", sub.ID.String()),
			zap.Error(err))
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrEnvelopeID, envelope.EnvelopeID)

	updated, _, err := s.engine.Apply(ctx, s.engine.forFirm(firmID, submissionID), intake.SignalSignatureSent, func(fresh *intake.Submission) (bool, error) {
		if fresh.SignatureStatus == intake.SignatureSigned {
			return false, intake.ErrAlreadySigned
		}
		return true, fresh.RecordEnvelope(envelope.EnvelopeID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Signature requested",
		zap.String("submission_id", sub.ID.String()),
		zap.String("envelope_id", envelope.EnvelopeID))

	return &SignatureRequestResponse{
		SubmissionID:    updated.ID,
		EnvelopeID:      envelope.EnvelopeID,
		Status:          envelope.Status,
		SignatureStatus: string(updated.SignatureStatus),
		Message:         "Signature request sent to " + client.Email,
	}, nil
}

// SignatureStatus polls the provider and applies any newer remote status
// through the lifecycle before answering
func (s *SignatureService) SignatureStatus(ctx context.Context, firmID, submissionID uuid.UUID) (*SignatureStatusResponse, error) {
	sub, err := s.submissions.FindByIDForFirm(ctx, firmID, submissionID)
	if err != nil {
		return nil, err
	}
	if !sub.HasEnvelope() {
		return &SignatureStatusResponse{
			SubmissionID:     sub.ID,
			RemoteStatus:     RemoteStatusNotRequested,
			SignatureStatus:  string(sub.SignatureStatus),
			SubmissionStatus: string(sub.Status),
		}, nil
	}

	var remote *EnvelopeStatus
	err = callGateway(ctx, s.gatewayTimeout, s.engine.Metrics(), ProviderSignature, "get_status", func(ctx context.Context) error {
		var err error
		remote, err = s.gateway.GetEnvelopeStatus(ctx, *sub.EnvelopeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if signal, ok := remoteStatusSignal[strings.ToLower(remote.Status)]; ok {
		updated, _, err := s.engine.Apply(ctx, s.engine.forFirm(firmID, submissionID), signal, nil)
		if err != nil {
			return nil, err
		}
		sub = updated
	}

	return &SignatureStatusResponse{
		SubmissionID:     sub.ID,
		EnvelopeID:       sub.EnvelopeID,
		RemoteStatus:     strings.ToLower(remote.Status),
		SignatureStatus:  string(sub.SignatureStatus),
		SubmissionStatus: string(sub.Status),
		SentAt:           remote.SentAt,
		DeliveredAt:      remote.DeliveredAt,
		CompletedAt:      remote.CompletedAt,
		DeclinedAt:       remote.DeclinedAt,
		VoidedAt:         remote.VoidedAt,
	}, nil
}

type signatureWebhook struct {
	Event string `json:"event"`
	Data  struct {
		EnvelopeID      string `json:"envelopeId"`
		EnvelopeSummary struct {
			EnvelopeID string `json:"envelopeId"`
		} `json:"envelopeSummary"`
	} `json:"data"`
}

func (w signatureWebhook) envelopeID() string {
	if id := strings.TrimSpace(w.Data.EnvelopeSummary.EnvelopeID); id != "" {
		return id
	}
	return strings.TrimSpace(w.Data.EnvelopeID)
}

// HandleWebhook processes a signature provider callback. Only an
// authentication failure is returned as an error; every other outcome is
// acknowledged so the provider does not retry.
func (s *SignatureService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (*WebhookResult, error) {
	metrics := s.engine.Metrics()
	if s.verifier != nil {
		if err := s.verifier.Verify(payload, signatureHeader); err != nil {
			s.logger.Warn("Rejected signature webhook with invalid signature")
			metrics.RecordWebhook(ctx, ProviderSignature, "rejected")
			return nil, err
		}
	}

	var hook signatureWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		s.logger.Warn("Malformed signature webhook payload", zap.Error(err))
		metrics.RecordWebhook(ctx, ProviderSignature, WebhookWarning)
		return &WebhookResult{Status: WebhookWarning, Message: "Malformed payload"}, nil
	}

	envelopeID := hook.envelopeID()
	if envelopeID == "" {
		s.logger.Warn("Signature webhook without envelope id", zap.String("event", hook.Event))
		metrics.RecordWebhook(ctx, ProviderSignature, WebhookWarning)
		return &WebhookResult{Status: WebhookWarning, Message: "No envelope ID in webhook"}, nil
	}

	signal, known := signatureEventSignals[hook.Event]
	if !known {
		s.logger.Info("Ignoring signature webhook event", zap.String("event", hook.Event))
		metrics.RecordWebhook(ctx, ProviderSignature, WebhookIgnored)
		return &WebhookResult{Status: WebhookIgnored, Message: "Unhandled event " + hook.Event}, nil
	}

	load := func(ctx context.Context) (*intake.Submission, error) {
		return s.submissions.FindByEnvelopeID(ctx, envelopeID)
	}
	sub, changed, err := s.engine.Apply(ctx, load, signal, nil)
	if err != nil {
		if isNotFound(err) {
			s.logger.Warn("Signature webhook for unknown envelope",
				zap.String("envelope_id", envelopeID),
				zap.String("event", hook.Event))
			metrics.RecordWebhook(ctx, ProviderSignature, WebhookIgnored)
			return &WebhookResult{Status: WebhookIgnored, Message: "Envelope not tracked"}, nil
		}
		// Internal failures are acknowledged too; the poll path reconciles later
		s.logger.Error("Failed to apply signature webhook",
			zap.String("envelope_id", envelopeID),
			zap.Error(err))
		metrics.RecordWebhook(ctx, ProviderSignature, WebhookWarning)
		return &WebhookResult{Status: WebhookWarning, Message: "Event could not be applied"}, nil
	}

	outcome := WebhookProcessed
	if !changed {
		outcome = WebhookIgnored
	}
	metrics.RecordWebhook(ctx, ProviderSignature, outcome)
	s.logger.Info("Signature webhook handled",
		zap.String("envelope_id", envelopeID),
		zap.String("event", hook.Event),
		zap.Bool("changed", changed))

	id := sub.ID
	return &WebhookResult{Status: outcome, SubmissionID: &id}, nil
}

func fileExtension(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		return strings.ToLower(filename[i+1:])
	}
	return "pdf"
}
