// Package usecase implements the sandbox issuer: it mints per-session wrapping keys and
// exchanges sealed envelopes for payment tokens. Card data is never stored.
package usecase

import (
	"context"
	"time"

	cryptoService "github.com/allisson/cardtoken/internal/crypto/service"
	issuerDomain "github.com/allisson/cardtoken/internal/issuer/domain"
	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

// SessionStore keeps sessions until they are taken or expire.
type SessionStore interface {
	Save(ctx context.Context, session *issuerDomain.Session) error
	// Take removes and returns the session; a second Take returns ErrSessionNotFound.
	Take(ctx context.Context, sessionID string) (*issuerDomain.Session, error)
	Ping(ctx context.Context) error
	Close() error
}

// EnvelopeOpener authenticates and decrypts an envelope bound to origin.
type EnvelopeOpener interface {
	Open(
		unwrapper cryptoService.KeyUnwrapper,
		envelope *tokenizationDomain.EnvelopeRequest,
		origin string,
	) (*tokenizationDomain.CardPayload, error)
}

// TokenGenerator issues payment tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

// SessionKey is a freshly minted session and the public key the client wraps with.
type SessionKey struct {
	Session      *issuerDomain.Session
	PublicKeyPEM string
}

// IssuerUseCase defines the issuer operations exposed over HTTP.
type IssuerUseCase interface {
	// CreateSession mints an RSA key pair bound to origin and stores the sealed private half.
	CreateSession(ctx context.Context, origin string) (*SessionKey, error)

	// Tokenize consumes the envelope's session, opens the envelope with the session's
	// origin and returns a new payment token. Sessions are single use.
	Tokenize(ctx context.Context, envelope *tokenizationDomain.EnvelopeRequest) (string, error)

	// Ready reports whether the session store is reachable.
	Ready(ctx context.Context) error
}

// Config holds the issuer tuning knobs.
type Config struct {
	SessionTTL time.Duration
	KeyBits    int
}
