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

// MaxTransitionAttempts bounds the optimistic-lock retry loop
const MaxTransitionAttempts = 5

// loader fetches a fresh copy of the submission on every attempt
type loader func(ctx context.Context) (*intake.Submission, error)

// mutator changes correlation data alongside a signal. It reports whether
// it changed anything that must be written.
type mutator func(s *intake.Submission) (bool, error)

// LifecycleEngine is the only writer of submission workflow state. Every
// signal source (webhooks, polls, public sign/pay, explicit requests) goes
// through Apply: load, intake.Advance, SaveWithLock, retried on conflict.
type LifecycleEngine struct {
	submissions intake.SubmissionRepository
	clients     intake.ClientRepository
	publisher   shared.EventPublisher
	metrics     *telemetry.IntakeMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// EngineOption configures LifecycleEngine
type EngineOption func(*LifecycleEngine)

// WithEventPublisher publishes the domain events recorded by transitions
func WithEventPublisher(p shared.EventPublisher) EngineOption {
	return func(e *LifecycleEngine) {
		e.publisher = p
	}
}

// WithMetrics records transition counters
func WithMetrics(m *telemetry.IntakeMetrics) EngineOption {
	return func(e *LifecycleEngine) {
		e.metrics = m
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) EngineOption {
	return func(e *LifecycleEngine) {
		e.now = now
	}
}

// NewLifecycleEngine creates a new LifecycleEngine
func NewLifecycleEngine(
	submissions intake.SubmissionRepository,
	clients intake.ClientRepository,
	logger *zap.Logger,
	opts ...EngineOption,
) *LifecycleEngine {
	e := &LifecycleEngine{
		submissions: submissions,
		clients:     clients,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Metrics returns the engine's metrics, possibly nil
func (e *LifecycleEngine) Metrics() *telemetry.IntakeMetrics {
	return e.metrics
}

func (e *LifecycleEngine) byID(id uuid.UUID) loader {
	return func(ctx context.Context) (*intake.Submission, error) {
		return e.submissions.FindByID(ctx, id)
	}
}

func (e *LifecycleEngine) forFirm(firmID, id uuid.UUID) loader {
	return func(ctx context.Context) (*intake.Submission, error) {
		return e.submissions.FindByIDForFirm(ctx, firmID, id)
	}
}

// Apply feeds signal to the submission returned by load. mutate, when set,
// runs on every attempt before the signal. A no-op is not written. It
// returns the stored submission and whether the workflow state changed.
func (e *LifecycleEngine) Apply(ctx context.Context, load loader, signal intake.Signal, mutate mutator) (*intake.Submission, bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "submission", "apply_signal", telemetry.SpanAttrSignal, string(signal))
	defer span.End()

	for attempt := 1; ; attempt++ {
		sub, err := load(ctx)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, false, err
		}
		telemetry.SetAttributes(span,
			telemetry.SpanAttrSubmissionID, sub.ID.String(),
			telemetry.SpanAttrFirmID, sub.FirmID.String())

		dirty := false
		if mutate != nil {
			if dirty, err = mutate(sub); err != nil {
				return sub, false, err
			}
		}
		changed := false
		if signal != "" {
			changed = sub.Apply(signal, e.now())
		}
		if !changed && !dirty {
			e.logger.Debug("Signal ignored",
				zap.String("submission_id", sub.ID.String()),
				zap.String("signal", string(signal)),
				zap.String("status", string(sub.Status)))
			return sub, false, nil
		}

		err = e.submissions.SaveWithLock(ctx, sub)
		if errors.Is(err, shared.ErrConcurrencyConflict) && attempt < MaxTransitionAttempts {
			e.logger.Debug("Submission changed concurrently, retrying",
				zap.String("submission_id", sub.ID.String()),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			telemetry.RecordError(span, err)
			e.logger.Warn("Failed to save submission",
				zap.String("submission_id", sub.ID.String()),
				zap.String("signal", string(signal)),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return nil, false, err
		}

		if changed {
			e.logger.Info("Submission transitioned",
				zap.String("submission_id", sub.ID.String()),
				zap.String("signal", string(signal)),
				zap.String("status", string(sub.Status)),
				zap.String("signature_status", string(sub.SignatureStatus)),
				zap.String("payment_status", string(sub.PaymentStatus)))
			e.metrics.RecordTransition(ctx, string(signal), string(sub.Status))
			e.syncClientStatus(ctx, sub)
		}
		e.publish(ctx, sub)
		return sub, changed, nil
	}
}

// Created publishes the events of a newly inserted submission and syncs
// the client status for submissions that complete immediately
func (e *LifecycleEngine) Created(ctx context.Context, sub *intake.Submission) {
	e.syncClientStatus(ctx, sub)
	e.publish(ctx, sub)
}

func (e *LifecycleEngine) publish(ctx context.Context, sub *intake.Submission) {
	events := sub.GetDomainEvents()
	sub.ClearDomainEvents()
	if e.publisher == nil || len(events) == 0 {
		return
	}
	if err := e.publisher.Publish(ctx, events...); err != nil {
		e.logger.Warn("Failed to publish submission events",
			zap.String("submission_id", sub.ID.String()),
			zap.Error(err))
	}
}

// syncClientStatus mirrors the workflow onto the informational client
// status. Failures never affect the submission.
func (e *LifecycleEngine) syncClientStatus(ctx context.Context, sub *intake.Submission) {
	status, ok := intake.StatusForSubmission(sub)
	if !ok || e.clients == nil {
		return
	}
	client, err := e.clients.FindByIDForFirm(ctx, sub.FirmID, sub.ClientID)
	if err != nil {
		e.logger.Warn("Failed to load client for status sync",
			zap.String("client_id", sub.ClientID.String()),
			zap.Error(err))
		return
	}
	if client.Status == status {
		return
	}
	if err := e.clients.UpdateStatus(ctx, sub.FirmID, client.ID, status); err != nil {
		e.logger.Warn("Failed to update client status",
			zap.String("client_id", client.ID.String()),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}
