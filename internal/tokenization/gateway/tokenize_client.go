package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/allisson/cardtoken/internal/tokenization/domain"
	"github.com/allisson/cardtoken/internal/tokenization/http/dto"
)

// TokenizeClient submits sealed envelopes to the issuer.
type TokenizeClient struct {
	client issuerClient
}

// NewTokenizeClient creates a tokenize client. A nil doer uses NewHTTPClient.
func NewTokenizeClient(cfg Config, doer HTTPDoer, logger *slog.Logger) *TokenizeClient {
	return &TokenizeClient{client: newIssuerClient(cfg, doer, logger)}
}

// Tokenize exchanges the envelope for a token. Transport failures and timeouts wrap
// domain.ErrNetwork; a non-2xx status or a body without result.token wraps
// domain.ErrProtocol.
func (c *TokenizeClient) Tokenize(
	ctx context.Context,
	envelope *domain.EnvelopeRequest,
) (*domain.TokenizationResult, error) {
	resp, err := c.client.postJSON(ctx, "/tokenize", dto.NewTokenizeRequest(envelope))
	if err != nil {
		if errors.Is(err, domain.ErrNetwork) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	if !resp.ok() {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrProtocol, resp.status)
	}

	var body dto.TokenizeResponse
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrProtocol, err)
	}

	result := body.ToResult()
	if result == nil {
		return nil, fmt.Errorf("%w: response missing result.token", domain.ErrProtocol)
	}
	return result, nil
}
