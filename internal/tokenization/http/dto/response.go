package dto

import (
	"time"

	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

// CreateSessionResponse carries the session key material. Fields are top level.
type CreateSessionResponse struct {
	KeyID        string     `json:"keyId"`
	PublicKeyPEM string     `json:"publicKeyPem"`
	SessionID    string     `json:"sessionId"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// ToSessionContext builds the attempt's session context for the given origin.
func (r *CreateSessionResponse) ToSessionContext(origin string) *tokenizationDomain.SessionContext {
	return &tokenizationDomain.SessionContext{
		KeyID:        r.KeyID,
		PublicKeyPEM: r.PublicKeyPEM,
		SessionID:    r.SessionID,
		Origin:       origin,
	}
}

// TokenizeResult is the nested result object of a tokenize response.
type TokenizeResult struct {
	Token string `json:"token"`
}

// TokenizeResponse wraps the issued token as {"result":{"token":...}}.
type TokenizeResponse struct {
	Result *TokenizeResult `json:"result"`
}

// NewTokenizeResponse wraps a token for the wire.
func NewTokenizeResponse(token string) TokenizeResponse {
	return TokenizeResponse{Result: &TokenizeResult{Token: token}}
}

// ToResult returns the domain result, or nil when the token is absent.
func (r *TokenizeResponse) ToResult() *tokenizationDomain.TokenizationResult {
	if r.Result == nil || r.Result.Token == "" {
		return nil
	}
	return &tokenizationDomain.TokenizationResult{Token: r.Result.Token}
}
