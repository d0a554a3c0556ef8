package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// withCheckout seeds a submission with checkout session cs_test_1
func (env *testEnv) withCheckout(t *testing.T) *intake.Submission {
	t.Helper()
	sub := env.seedSubmission(t, env.retainerForm(t))
	updated, _, err := env.engine.Apply(context.Background(), env.engine.byID(sub.ID), "", func(s *intake.Submission) (bool, error) {
		return true, s.RecordCheckoutSession("cs_test_1")
	})
	require.NoError(t, err)
	return updated
}

func checkoutEvent(id, eventType string, sub *intake.Submission, sessionID, paymentStatus string) *PaymentEvent {
	metadata := map[string]string{}
	if sub != nil {
		metadata["submission_id"] = sub.ID.String()
	}
	return &PaymentEvent{
		ID:   id,
		Type: eventType,
		Session: &CheckoutSession{
			SessionID:     sessionID,
			Status:        "complete",
			PaymentStatus: paymentStatus,
			Metadata:      metadata,
		},
	}
}

func TestPaymentService_HandleWebhook(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"id":"evt_1"}`)
	const header = "t=1700000000,v1=abc"

	t.Run("completed checkout marks paid", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, sub, "cs_test_1", CheckoutPaymentStatusPaid), nil)

		result, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookProcessed, result.Status)
		require.NotNil(t, result.SubmissionID)
		assert.Equal(t, sub.ID, *result.SubmissionID)

		stored := env.load(t, sub.ID)
		assert.Equal(t, intake.PaymentSucceeded, stored.PaymentStatus)
		assert.Equal(t, intake.StatusPaymentCompleted, stored.Status)
		assert.NotNil(t, stored.PaidAt)
	})

	t.Run("signed then paid completes", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		_, _, err := env.engine.Apply(ctx, env.engine.byID(sub.ID), intake.SignalSignatureSigned, nil)
		require.NoError(t, err)
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, sub, "cs_test_1", CheckoutPaymentStatusPaid), nil)

		_, err = env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, intake.StatusCompleted, env.load(t, sub.ID).Status)
		assert.Equal(t, intake.ClientActive, env.clients.status(sub.ClientID))
	})

	t.Run("duplicate event id", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, sub, "cs_test_1", CheckoutPaymentStatusPaid), nil)

		_, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		saves := env.submissions.saves

		result, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookDuplicate, result.Status)
		assert.Equal(t, saves, env.submissions.saves)
	})

	t.Run("failed apply allows redelivery", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.submissions.saveErr = errors.New("connection reset")
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, sub, "cs_test_1", CheckoutPaymentStatusPaid), nil)

		first, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookWarning, first.Status)
		assert.Equal(t, intake.PaymentPending, env.load(t, sub.ID).PaymentStatus)

		env.submissions.saveErr = nil
		again, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookProcessed, again.Status)
		assert.Equal(t, intake.PaymentSucceeded, env.load(t, sub.ID).PaymentStatus)
	})

	t.Run("idempotency store outage still processes", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.processed.err = errors.New("redis: connection refused")
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, sub, "cs_test_1", CheckoutPaymentStatusPaid), nil)

		result, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookProcessed, result.Status)
	})

	t.Run("invalid signature is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		rejected := shared.NewDomainError(shared.CodeUnauthenticated, "Invalid webhook signature")
		env.payments.On("ParseWebhook", payload, "forged").Return(nil, rejected)

		result, err := env.paymentSvc.HandleWebhook(ctx, payload, "forged")
		assert.Nil(t, result)
		assert.True(t, shared.HasCode(err, shared.CodeUnauthenticated))
	})

	t.Run("unpaid completion is ignored", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, sub, "cs_test_1", CheckoutPaymentStatusUnpaid), nil)

		result, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookIgnored, result.Status)
		assert.Equal(t, intake.PaymentPending, env.load(t, sub.ID).PaymentStatus)
	})

	t.Run("async success marks paid", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventAsyncPaymentSucceeded, sub, "cs_test_1", CheckoutPaymentStatusPaid), nil)

		_, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, intake.PaymentSucceeded, env.load(t, sub.ID).PaymentStatus)
	})

	t.Run("async failure marks failed", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventAsyncPaymentFailed, sub, "cs_test_1", CheckoutPaymentStatusUnpaid), nil)

		_, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, intake.PaymentFailed, env.load(t, sub.ID).PaymentStatus)
	})

	t.Run("expired checkout", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutExpired, sub, "cs_test_1", CheckoutPaymentStatusUnpaid), nil)

		_, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		stored := env.load(t, sub.ID)
		assert.Equal(t, intake.PaymentExpired, stored.PaymentStatus)
		assert.Equal(t, intake.StatusPaymentExpired, stored.Status)
		assert.Contains(t, env.publisher.published(), intake.EventTypePaymentExpired)
	})

	t.Run("payment after decline is a no-op", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		_, _, err := env.engine.Apply(ctx, env.engine.byID(sub.ID), intake.SignalSignatureSent, nil)
		require.NoError(t, err)
		_, _, err = env.engine.Apply(ctx, env.engine.byID(sub.ID), intake.SignalSignatureDeclined, nil)
		require.NoError(t, err)
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, sub, "cs_test_1", CheckoutPaymentStatusPaid), nil)

		result, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookIgnored, result.Status)
		stored := env.load(t, sub.ID)
		assert.Equal(t, intake.StatusDeclined, stored.Status)
		assert.Equal(t, intake.PaymentPending, stored.PaymentStatus)
	})

	t.Run("session mismatch is ignored", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, sub, "cs_other", CheckoutPaymentStatusPaid), nil)

		result, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookIgnored, result.Status)
		assert.Equal(t, "Checkout session mismatch", result.Message)
		assert.Equal(t, intake.PaymentPending, env.load(t, sub.ID).PaymentStatus)
	})

	t.Run("falls back to session lookup", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, nil, "cs_test_1", CheckoutPaymentStatusPaid), nil)

		result, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookProcessed, result.Status)
		assert.Equal(t, sub.ID, *result.SubmissionID)
	})

	t.Run("records session when none was stored", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.seedSubmission(t, env.retainerForm(t))
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, sub, "cs_late", CheckoutPaymentStatusPaid), nil)

		_, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		stored := env.load(t, sub.ID)
		require.NotNil(t, stored.CheckoutSessionID)
		assert.Equal(t, "cs_late", *stored.CheckoutSessionID)
		assert.Equal(t, intake.PaymentSucceeded, stored.PaymentStatus)
	})

	t.Run("unknown submission is ignored", func(t *testing.T) {
		env := newTestEnv(t)
		ghost := &intake.Submission{}
		ghost.ID = uuid.New()
		env.payments.On("ParseWebhook", payload, header).
			Return(checkoutEvent("evt_1", PaymentEventCheckoutCompleted, ghost, "cs_ghost", CheckoutPaymentStatusPaid), nil)

		result, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookIgnored, result.Status)
		assert.Equal(t, "Submission not found", result.Message)
	})

	t.Run("unhandled event type", func(t *testing.T) {
		env := newTestEnv(t)
		env.payments.On("ParseWebhook", payload, header).
			Return(&PaymentEvent{ID: "evt_1", Type: "invoice.paid"}, nil)

		result, err := env.paymentSvc.HandleWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, WebhookIgnored, result.Status)
		assert.Equal(t, "Unhandled event type invoice.paid", result.Message)
	})
}

func TestPaymentService_PaymentStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("no checkout yet", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.seedSubmission(t, env.retainerForm(t))

		resp, err := env.paymentSvc.PaymentStatus(ctx, env.firmID, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, RemoteStatusNotRequested, resp.CheckoutStatus)
		env.payments.AssertNotCalled(t, "GetCheckout", mock.Anything, mock.Anything)
	})

	t.Run("paid remotely applies success", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("GetCheckout", mock.Anything, "cs_test_1").
			Return(&CheckoutSession{SessionID: "cs_test_1", Status: "complete", PaymentStatus: CheckoutPaymentStatusPaid}, nil)

		resp, err := env.paymentSvc.PaymentStatus(ctx, env.firmID, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "complete", resp.CheckoutStatus)
		assert.Equal(t, "succeeded", resp.PaymentStatus)
		assert.Equal(t, "payment_completed", resp.SubmissionStatus)
	})

	t.Run("expired remotely", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("GetCheckout", mock.Anything, "cs_test_1").
			Return(&CheckoutSession{SessionID: "cs_test_1", Status: CheckoutStatusExpired, PaymentStatus: CheckoutPaymentStatusUnpaid}, nil)

		resp, err := env.paymentSvc.PaymentStatus(ctx, env.firmID, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "expired", resp.PaymentStatus)
		assert.Equal(t, "payment_expired", resp.SubmissionStatus)
	})

	t.Run("open checkout changes nothing", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)
		env.payments.On("GetCheckout", mock.Anything, "cs_test_1").
			Return(&CheckoutSession{SessionID: "cs_test_1", Status: "open", PaymentStatus: CheckoutPaymentStatusUnpaid}, nil)

		resp, err := env.paymentSvc.PaymentStatus(ctx, env.firmID, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending", resp.PaymentStatus)
		assert.Equal(t, "submitted", resp.SubmissionStatus)
	})

	t.Run("other firm", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.withCheckout(t)

		_, err := env.paymentSvc.PaymentStatus(ctx, uuid.New(), sub.ID)
		assert.ErrorIs(t, err, intake.ErrSubmissionNotFound)
	})
}
