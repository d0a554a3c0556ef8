package intake

import (
	"context"
	"time"

	"github.com/lexflow/backend/internal/infrastructure/telemetry"
)

// Provider labels used for gateway metrics and webhook outcomes
const (
	ProviderSignature = "signature"
	ProviderPayment   = "payment"
	ProviderStorage   = "storage"
)

// callGateway runs fn under the outbound timeout and records its latency.
// It never retries.
func callGateway(ctx context.Context, timeout time.Duration, metrics *telemetry.IntakeMetrics, provider, op string, fn func(ctx context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	err := fn(ctx)
	metrics.RecordGatewayCall(ctx, provider, op, time.Since(start), err)
	return err
}
