package submission

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/krishkalaria12/foodies/submission"

const (
	outcomeCompleted        = "completed"
	outcomeInvalid          = "invalid"
	outcomeStorageError     = "storage_error"
	outcomePersistenceError = "persistence_error"
)

type metrics struct {
	submissions          metric.Int64Counter
	invalidationFailures metric.Int64Counter
}

// newMetrics binds to the global meter provider, which is a no-op until
// telemetry.Init installs a real one.
func newMetrics() *metrics {
	meter := otel.Meter(meterName)

	submissions, _ := meter.Int64Counter("foodies.submissions",
		metric.WithDescription("Meal submissions by outcome"))
	failures, _ := meter.Int64Counter("foodies.invalidation.failures",
		metric.WithDescription("Listing cache invalidations that failed"))

	return &metrics{submissions: submissions, invalidationFailures: failures}
}

func (m *metrics) outcome(ctx context.Context, outcome string) {
	m.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *metrics) invalidationFailed(ctx context.Context) {
	m.invalidationFailures.Add(ctx, 1)
}
