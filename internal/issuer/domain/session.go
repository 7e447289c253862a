// Package domain defines the sandbox issuer's session and token format types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the issuer-side record of one tokenization session. The private key is
// stored sealed by the configured keeper, never in the clear.
type Session struct {
	ID               string    `json:"id"`
	KeyID            string    `json:"keyId"`
	Origin           string    `json:"origin"`
	SealedPrivateKey []byte    `json:"sealedPrivateKey"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// NewSession creates a session bound to origin that expires ttl after now.
func NewSession(origin string, sealedPrivateKey []byte, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:               uuid.Must(uuid.NewV7()).String(),
		KeyID:            uuid.Must(uuid.NewV7()).String(),
		Origin:           origin,
		SealedPrivateKey: sealedPrivateKey,
		CreatedAt:        now.UTC(),
		ExpiresAt:        now.UTC().Add(ttl),
	}
}

// IsExpired reports whether the session expired at or before now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTL returns the remaining lifetime at now, or zero once expired.
func (s *Session) TTL(now time.Time) time.Duration {
	return max(s.ExpiresAt.Sub(now), 0)
}
