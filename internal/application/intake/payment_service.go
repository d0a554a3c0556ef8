package intake

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/lexflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CheckoutStatusExpired is the provider's status for an abandoned checkout
const CheckoutStatusExpired = "expired"

// idempotencyKeyPrefix namespaces payment event ids in the idempotency store
const idempotencyKeyPrefix = "payment:"

var errSessionMismatch = errors.New("checkout session does not match submission")

// PaymentService reconciles checkout sessions from webhooks and polls
type PaymentService struct {
	engine         *LifecycleEngine
	submissions    intake.SubmissionRepository
	gateway        PaymentGateway
	processed      shared.IdempotencyStore
	gatewayTimeout time.Duration
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	engine *LifecycleEngine,
	submissions intake.SubmissionRepository,
	gateway PaymentGateway,
	processed shared.IdempotencyStore,
	gatewayTimeout time.Duration,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		engine:         engine,
		submissions:    submissions,
		gateway:        gateway,
		processed:      processed,
		gatewayTimeout: gatewayTimeout,
		logger:         logger,
	}
}

// HandleWebhook verifies and applies a payment provider event. A signature
// failure is the only error returned; every verified event is acknowledged.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (*WebhookResult, error) {
	metrics := s.engine.Metrics()

	event, err := s.gateway.ParseWebhook(payload, signatureHeader)
	if err != nil {
		metrics.RecordWebhook(ctx, ProviderPayment, "rejected")
		return nil, err
	}

	marked := false
	if s.processed != nil && event.ID != "" {
		fresh, err := s.processed.MarkProcessed(ctx, idempotencyKeyPrefix+event.ID, shared.DefaultIdempotencyTTL)
		marked = err == nil && fresh
		if err != nil {
			s.logger.Warn("Idempotency store unavailable, processing event anyway",
				zap.String("event_id", event.ID),
				zap.Error(err))
		} else if !fresh {
			s.logger.Info("Duplicate payment webhook", zap.String("event_id", event.ID))
			metrics.RecordWebhook(ctx, ProviderPayment, WebhookDuplicate)
			return &WebhookResult{Status: WebhookDuplicate}, nil
		}
	}

	signal, reason := paymentSignal(event)
	if signal == "" {
		s.logger.Info("Ignoring payment webhook",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("reason", reason))
		metrics.RecordWebhook(ctx, ProviderPayment, WebhookIgnored)
		return &WebhookResult{Status: WebhookIgnored, Message: reason}, nil
	}

	session := event.Session
	sub, changed, err := s.engine.Apply(ctx, s.resolve(session), signal, func(fresh *intake.Submission) (bool, error) {
		if !fresh.MatchesCheckoutSession(session.SessionID) {
			return false, errSessionMismatch
		}
		if fresh.CheckoutSessionID == nil {
			return true, fresh.RecordCheckoutSession(session.SessionID)
		}
		return false, nil
	})
	switch {
	case err == nil:
	case isNotFound(err):
		s.logger.Warn("Payment webhook for unknown submission",
			zap.String("event_id", event.ID),
			zap.String("session_id", session.SessionID))
		metrics.RecordWebhook(ctx, ProviderPayment, WebhookIgnored)
		return &WebhookResult{Status: WebhookIgnored, Message: "Submission not found"}, nil
	case errors.Is(err, errSessionMismatch):
		s.logger.Warn("Payment webhook session does not match submission",
			zap.String("event_id", event.ID),
			zap.String("session_id", session.SessionID))
		metrics.RecordWebhook(ctx, ProviderPayment, WebhookIgnored)
		return &WebhookResult{Status: WebhookIgnored, Message: "Checkout session mismatch"}, nil
	default:
		s.logger.Error("Failed to apply payment webhook",
			zap.String("event_id", event.ID),
			zap.String("session_id", session.SessionID),
			zap.Error(err))
		if marked {
			s.release(ctx, event.ID)
		}
		metrics.RecordWebhook(ctx, ProviderPayment, WebhookWarning)
		return &WebhookResult{Status: WebhookWarning, Message: "Event could not be applied"}, nil
	}

	outcome := WebhookProcessed
	if !changed {
		outcome = WebhookIgnored
	}
	metrics.RecordWebhook(ctx, ProviderPayment, outcome)
	s.logger.Info("Payment webhook handled",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("submission_id", sub.ID.String()),
		zap.Bool("changed", changed))

	id := sub.ID
	return &WebhookResult{Status: outcome, SubmissionID: &id}, nil
}

// release lets a redelivery of an event that failed to apply run again
func (s *PaymentService) release(ctx context.Context, eventID string) {
	if err := s.processed.Release(ctx, idempotencyKeyPrefix+eventID); err != nil {
		s.logger.Warn("Failed to release payment webhook id",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}

// paymentSignal maps a payment event to a lifecycle signal, or returns the
// reason it is ignored
func paymentSignal(event *PaymentEvent) (intake.Signal, string) {
	if event.Session == nil {
		return "", "Unhandled event type " + event.Type
	}
	switch event.Type {
	case PaymentEventCheckoutCompleted:
		if event.Session.PaymentStatus != CheckoutPaymentStatusPaid {
			return "", "Payment not completed"
		}
		return intake.SignalPaymentSucceeded, ""
	case PaymentEventAsyncPaymentSucceeded:
		return intake.SignalPaymentSucceeded, ""
	case PaymentEventAsyncPaymentFailed:
		return intake.SignalPaymentFailed, ""
	case PaymentEventCheckoutExpired:
		return intake.SignalPaymentExpired, ""
	}
	return "", "Unhandled event type " + event.Type
}

// resolve finds the submission by metadata, falling back to the session
// correlation id
func (s *PaymentService) resolve(session *CheckoutSession) loader {
	return func(ctx context.Context) (*intake.Submission, error) {
		if raw, ok := session.Metadata["submission_id"]; ok {
			if id, err := uuid.Parse(raw); err == nil {
				return s.submissions.FindByID(ctx, id)
			}
		}
		return s.submissions.FindByCheckoutSessionID(ctx, session.SessionID)
	}
}

// PaymentStatus polls the checkout session and applies a completed or
// expired result through the lifecycle
func (s *PaymentService) PaymentStatus(ctx context.Context, firmID, submissionID uuid.UUID) (*PaymentStatusResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "status",
		telemetry.SpanAttrFirmID, firmID.String(),
		telemetry.SpanAttrSubmissionID, submissionID.String())
	defer span.End()

	sub, err := s.submissions.FindByIDForFirm(ctx, firmID, submissionID)
	if err != nil {
		return nil, err
	}
	resp := &PaymentStatusResponse{
		SubmissionID:      sub.ID,
		CheckoutSessionID: sub.CheckoutSessionID,
		CheckoutStatus:    RemoteStatusNotRequested,
		PaymentStatus:     string(sub.PaymentStatus),
		SubmissionStatus:  string(sub.Status),
	}
	if sub.CheckoutSessionID == nil || *sub.CheckoutSessionID == "" {
		return resp, nil
	}

	var session *CheckoutSession
	err = callGateway(ctx, s.gatewayTimeout, s.engine.Metrics(), ProviderPayment, "get_checkout", func(ctx context.Context) error {
		var err error
		session, err = s.gateway.GetCheckout(ctx, *sub.CheckoutSessionID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp.CheckoutStatus = session.Status

	var signal intake.Signal
	switch {
	case session.PaymentStatus == CheckoutPaymentStatusPaid:
		signal = intake.SignalPaymentSucceeded
	case session.Status == CheckoutStatusExpired:
		signal = intake.SignalPaymentExpired
	}
	if signal != "" {
		updated, _, err := s.engine.Apply(ctx, s.engine.forFirm(firmID, submissionID), signal, nil)
		if err != nil {
			return nil, err
		}
		resp.PaymentStatus = string(updated.PaymentStatus)
		resp.SubmissionStatus = string(updated.Status)
	}
	return resp, nil
}

func isNotFound(err error) bool {
	return shared.HasCode(err, shared.CodeNotFound)
}
