package usecase

import (
	"context"
	"time"

	"github.com/allisson/cardtoken/internal/metrics"
	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

// tokenizationUseCaseWithMetrics decorates TokenizationUseCase with metrics instrumentation.
type tokenizationUseCaseWithMetrics struct {
	next    TokenizationUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenizationUseCaseWithMetrics wraps a TokenizationUseCase with metrics recording.
// Failures are recorded under their error kind.
func NewTokenizationUseCaseWithMetrics(
	useCase TokenizationUseCase,
	m metrics.BusinessMetrics,
) TokenizationUseCase {
	return &tokenizationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Tokenize records metrics for tokenization attempts.
func (t *tokenizationUseCaseWithMetrics) Tokenize(
	ctx context.Context,
	form tokenizationDomain.UpstreamFormData,
) (*tokenizationDomain.TokenizationResult, error) {
	start := time.Now()
	result, err := t.next.Tokenize(ctx, form)

	status := metrics.StatusSuccess
	if err != nil {
		status = string(tokenizationDomain.KindOf(err))
	}

	t.metrics.RecordOperation(ctx, metrics.ComponentTokenization, "tokenize", status)
	t.metrics.RecordDuration(ctx, metrics.ComponentTokenization, "tokenize", time.Since(start), status)

	return result, err
}
