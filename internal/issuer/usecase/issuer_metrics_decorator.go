package usecase

import (
	"context"
	"time"

	"github.com/allisson/cardtoken/internal/metrics"
	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

// issuerUseCaseWithMetrics decorates IssuerUseCase with metrics instrumentation.
type issuerUseCaseWithMetrics struct {
	next    IssuerUseCase
	metrics metrics.BusinessMetrics
}

// NewIssuerUseCaseWithMetrics wraps an IssuerUseCase with metrics recording.
func NewIssuerUseCaseWithMetrics(useCase IssuerUseCase, m metrics.BusinessMetrics) IssuerUseCase {
	return &issuerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// CreateSession records metrics for session creation.
func (i *issuerUseCaseWithMetrics) CreateSession(ctx context.Context, origin string) (*SessionKey, error) {
	start := time.Now()
	key, err := i.next.CreateSession(ctx, origin)
	i.record(ctx, "create_session", start, err)
	return key, err
}

// Tokenize records metrics for token issuance.
func (i *issuerUseCaseWithMetrics) Tokenize(
	ctx context.Context,
	envelope *tokenizationDomain.EnvelopeRequest,
) (string, error) {
	start := time.Now()
	token, err := i.next.Tokenize(ctx, envelope)
	i.record(ctx, "tokenize", start, err)
	return token, err
}

// Ready is not instrumented; probes would drown the operation counters.
func (i *issuerUseCaseWithMetrics) Ready(ctx context.Context) error {
	return i.next.Ready(ctx)
}

func (i *issuerUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = "error"
	}
	i.metrics.RecordOperation(ctx, metrics.ComponentIssuer, operation, status)
	i.metrics.RecordDuration(ctx, metrics.ComponentIssuer, operation, time.Since(start), status)
}
