package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Component labels.
const (
	ComponentIssuer       = "issuer"
	ComponentTokenization = "tokenization"
)

// StatusSuccess labels an operation that returned no error.
const StatusSuccess = "success"

// durationBuckets cover a local envelope seal at the low end and an RSA key generation
// or a slow issuer round trip at the high end.
var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// BusinessMetrics records operation outcomes for the tokenization client and the issuer.
//
// Status is StatusSuccess or a failure label. The client records the tokenization error
// kind ("network", "protocol", ...); the issuer records "error".
type BusinessMetrics interface {
	// RecordOperation counts one finished operation.
	RecordOperation(ctx context.Context, component, operation, status string)

	// RecordDuration observes how long one finished operation took.
	RecordDuration(ctx context.Context, component, operation string, duration time.Duration, status string)
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
}

// NewBusinessMetrics builds the operation counter and duration histogram on meterProvider.
// Instrument names are prefixed with namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, err := meter.Int64Counter(
		namespace+"_operations_total",
		metric.WithDescription("Tokenization and issuer operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durations, err := meter.Float64Histogram(
		namespace+"_operation_duration_seconds",
		metric.WithDescription("Duration of tokenization and issuer operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &businessMetrics{operations: operations, durations: durations}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, component, operation, status string) {
	b.operations.Add(ctx, 1, operationAttributes(component, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	component, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttributes(component, operation, status))
}

func operationAttributes(component, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

type noOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics returns a BusinessMetrics that records nothing. It is used when
// metrics are disabled so decorators never need a nil check.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return noOpBusinessMetrics{}
}

func (noOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (noOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}
