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

// SessionProvider acquires per-attempt session key material from the issuer.
type SessionProvider struct {
	client issuerClient
}

// NewSessionProvider creates a session provider. A nil doer uses NewHTTPClient.
func NewSessionProvider(cfg Config, doer HTTPDoer, logger *slog.Logger) *SessionProvider {
	return &SessionProvider{client: newIssuerClient(cfg, doer, logger)}
}

// Acquire requests a fresh session bound to origin. Every failure wraps
// domain.ErrSessionAcquisition, except an exceeded timeout which wraps domain.ErrNetwork.
func (p *SessionProvider) Acquire(ctx context.Context, origin string) (*domain.SessionContext, error) {
	resp, err := p.client.postJSON(ctx, "/sessions", dto.CreateSessionRequest{Origin: origin})
	if err != nil {
		if errors.Is(err, domain.ErrNetwork) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionAcquisition, err)
	}
	if !resp.ok() {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrSessionAcquisition, resp.status)
	}

	var body dto.CreateSessionResponse
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrSessionAcquisition, err)
	}

	session := body.ToSessionContext(origin)
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return session, nil
}
