package intake

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/lexflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SubmissionService runs the public entry flow and the submission reads
type SubmissionService struct {
	engine         *LifecycleEngine
	forms          intake.FormRepository
	clients        intake.ClientRepository
	submissions    intake.SubmissionRepository
	payments       PaymentGateway
	links          Links
	gatewayTimeout time.Duration
	logger         *zap.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	engine *LifecycleEngine,
	forms intake.FormRepository,
	clients intake.ClientRepository,
	submissions intake.SubmissionRepository,
	payments PaymentGateway,
	links Links,
	gatewayTimeout time.Duration,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		engine:         engine,
		forms:          forms,
		clients:        clients,
		submissions:    submissions,
		payments:       payments,
		links:          links,
		gatewayTimeout: gatewayTimeout,
		logger:         logger,
	}
}

// Submit records a public submission of an active form. Gateway failures
// while preparing the workflow links are logged and never fail the call.
func (s *SubmissionService) Submit(ctx context.Context, formID uuid.UUID, req SubmitRequest) (*SubmitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "submission", "submit", telemetry.SpanAttrFormID, formID.String())
	defer span.End()

	form, err := s.forms.FindActiveByID(ctx, formID)
	if err != nil {
		return nil, err
	}

	profile, err := intake.ProfileFromFormData(req.FormData)
	if err != nil {
		return nil, err
	}
	candidate, err := intake.NewClient(form.FirmID, profile, req.FormData)
	if err != nil {
		return nil, err
	}
	client, created, err := s.clients.GetOrCreate(ctx, candidate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if created {
		s.logger.Info("Client created from intake",
			zap.String("firm_id", form.FirmID.String()),
			zap.String("client_id", client.ID.String()))
	}

	sub, err := intake.NewSubmission(form, client, req.FormData)
	if err != nil {
		return nil, err
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.engine.Created(ctx, sub)
	telemetry.SetAttributes(span, telemetry.SpanAttrSubmissionID, sub.ID.String())

	s.logger.Info("Submission created",
		zap.String("submission_id", sub.ID.String()),
		zap.String("form_id", form.ID.String()),
		zap.String("status", string(sub.Status)))

	resp := &SubmitResponse{}
	if sub.Requirements.SignatureRequired {
		url := s.links.SignaturePage(sub.ID)
		resp.SignatureURL = &url
	}
	if sub.Requirements.PaymentRequired {
		if updated, checkoutURL := s.startCheckout(ctx, sub, client); checkoutURL != "" {
			sub = updated
			resp.PaymentURL = &checkoutURL
		}
	}

	resp.Submission = ToSubmissionResponse(sub)
	resp.NextStep = string(sub.NextStep(resp.PaymentURL != nil))
	return resp, nil
}

// startCheckout pre-creates the retainer checkout. It is best-effort: on
// any failure it logs and returns the submission unchanged with no URL.
func (s *SubmissionService) startCheckout(ctx context.Context, sub *intake.Submission, client *intake.Client) (*intake.Submission, string) {
	var session *CheckoutSession
	err := callGateway(ctx, s.gatewayTimeout, s.engine.Metrics(), ProviderPayment, "create_checkout", func(ctx context.Context) error {
		var err error
		session, err = s.payments.CreateCheckout(ctx, CheckoutRequest{
			Amount:        sub.PaymentAmount.Decimal,
			Description:   "Retainer fee for legal services",
			CustomerEmail: client.Email,
			SuccessURL:    s.links.PaymentSuccess(sub.ID),
			CancelURL:     s.links.PaymentCancelled(sub.ID),
			Metadata: map[string]string{
				"submission_id": sub.ID.String(),
				"form_id":       sub.FormID.String(),
				"client_id":     sub.ClientID.String(),
			},
		})
		return err
	})
	if err != nil {
		s.logger.Warn("Checkout creation failed, submission continues without payment link",
			zap.String("submission_id", sub.ID.String()),
			zap.Error(err))
		return sub, ""
	}

	updated, _, err := s.engine.Apply(ctx, s.engine.byID(sub.ID), "", func(fresh *intake.Submission) (bool, error) {
		return true, fresh.RecordCheckoutSession(session.SessionID)
	})
	if err != nil {
		s.logger.Warn("Failed to record checkout session",
			zap.String("submission_id", sub.ID.String()),
			zap.String("session_id", session.SessionID),
			zap.Error(err))
		return sub, ""
	}
	return updated, session.CheckoutURL
}

// GetPublicStatus returns the status snapshot polled by the success page
func (s *SubmissionService) GetPublicStatus(ctx context.Context, id uuid.UUID) (*SubmissionStatusResponse, error) {
	sub, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSubmissionStatusResponse(sub)
	return &resp, nil
}

// Get returns one of the firm's submissions
func (s *SubmissionService) Get(ctx context.Context, firmID, id uuid.UUID) (*SubmissionResponse, error) {
	sub, err := s.submissions.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return nil, err
	}
	resp := ToSubmissionResponse(sub)
	return &resp, nil
}

// List pages through the firm's submissions
func (s *SubmissionService) List(ctx context.Context, firmID uuid.UUID, filter SubmissionListFilter) ([]SubmissionResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	domainFilter.Normalize()
	if filter.FormID != "" {
		domainFilter.Filters["form_id"] = filter.FormID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	subs, total, err := s.submissions.ListForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSubmissionResponses(subs), total, nil
}

// PublicSign records a typed signature from the public signing page and
// applies signature_signed
func (s *SubmissionService) PublicSign(ctx context.Context, id uuid.UUID, req SignRequest) (*SubmissionStatusResponse, error) {
	date := req.SignatureDate
	if date == "" {
		date = time.Now().UTC().Format(time.DateOnly)
	}

	sub, changed, err := s.engine.Apply(ctx, s.engine.byID(id), intake.SignalSignatureSigned, func(fresh *intake.Submission) (bool, error) {
		if fresh.SignatureStatus == intake.SignatureSigned {
			return false, intake.ErrAlreadySigned
		}
		if fresh.Status.IsTerminal() {
			return false, shared.NewPreconditionError("Submission is already closed")
		}
		fresh.RecordDirectSignature(req.SignatureName, date)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("Submission signed directly", zap.String("submission_id", id.String()))
	}
	resp := ToSubmissionStatusResponse(sub)
	return &resp, nil
}

// PublicPay confirms a payment without the payment provider. It drives the
// same payment_succeeded transition as the webhook.
func (s *SubmissionService) PublicPay(ctx context.Context, id uuid.UUID) (*SubmissionStatusResponse, error) {
	sub, changed, err := s.engine.Apply(ctx, s.engine.byID(id), intake.SignalPaymentSucceeded, func(fresh *intake.Submission) (bool, error) {
		if fresh.PaymentStatus == intake.PaymentSucceeded {
			return false, shared.NewPreconditionError("Payment already completed")
		}
		if fresh.Status.IsTerminal() {
			return false, shared.NewPreconditionError("Submission is already closed")
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("Submission paid directly", zap.String("submission_id", id.String()))
	}
	resp := ToSubmissionStatusResponse(sub)
	return &resp, nil
}
