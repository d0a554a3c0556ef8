package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for intake metrics
const MeterName = "lexflow-backend"

// IntakeMetrics counts lifecycle transitions and times provider calls
type IntakeMetrics struct {
	transitions *Counter
	webhooks    *Counter
	gatewayCall *Histogram
}

// NewIntakeMetrics registers the intake instruments on meter
func NewIntakeMetrics(meter metric.Meter) (*IntakeMetrics, error) {
	transitions, err := NewCounter(meter, "lexflow.submission.transitions",
		"Submission lifecycle signals that changed workflow state", "{transition}")
	if err != nil {
		return nil, err
	}
	webhooks, err := NewCounter(meter, "lexflow.webhooks.received",
		"Provider webhooks received by outcome", "{webhook}")
	if err != nil {
		return nil, err
	}
	gatewayCall, err := NewHistogram(meter, "lexflow.gateway.duration",
		"Latency of calls to signature, payment and storage providers", "s", GatewayDurationBuckets)
	if err != nil {
		return nil, err
	}
	return &IntakeMetrics{transitions: transitions, webhooks: webhooks, gatewayCall: gatewayCall}, nil
}

// RecordTransition counts one state-changing signal
func (m *IntakeMetrics) RecordTransition(ctx context.Context, signal, status string) {
	if m == nil {
		return
	}
	m.transitions.Inc(ctx, AttrSignal.String(signal), AttrStatus.String(status))
}

// RecordWebhook counts one webhook delivery. outcome is processed,
// duplicate, ignored or rejected.
func (m *IntakeMetrics) RecordWebhook(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	m.webhooks.Inc(ctx, AttrProvider.String(provider), AttrOutcome.String(outcome))
}

// RecordGatewayCall records how long a provider call took
func (m *IntakeMetrics) RecordGatewayCall(ctx context.Context, provider, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.gatewayCall.RecordDuration(ctx, d,
		AttrProvider.String(provider), AttrOp.String(operation), AttrOutcome.String(outcome))
}
