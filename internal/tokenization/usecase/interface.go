// Package usecase defines interfaces and implementations for the tokenization handshake.
// The orchestrator drives one attempt through validation, session key acquisition,
// envelope encryption and submission, and notifies the host exactly once.
package usecase

import (
	"context"

	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

// SessionProvider acquires per-attempt session key material bound to an origin.
type SessionProvider interface {
	Acquire(ctx context.Context, origin string) (*tokenizationDomain.SessionContext, error)
}

// EnvelopeEncryptor seals a card payload under the session's wrapping key.
type EnvelopeEncryptor interface {
	Encrypt(
		session *tokenizationDomain.SessionContext,
		payload tokenizationDomain.CardPayload,
	) (*tokenizationDomain.EnvelopeRequest, error)
}

// TokenizeClient exchanges a sealed envelope for a payment token.
type TokenizeClient interface {
	Tokenize(
		ctx context.Context,
		envelope *tokenizationDomain.EnvelopeRequest,
	) (*tokenizationDomain.TokenizationResult, error)
}

// FormSource is the hosted-fields component: it yields the pre-encrypted form data on
// submit and can clear its fields.
type FormSource interface {
	Collect(ctx context.Context) (*tokenizationDomain.UpstreamFormData, error)
	Reset(ctx context.Context) error
}

// TokenizationUseCase runs one tokenization attempt to completion.
type TokenizationUseCase interface {
	// Tokenize blocks until the attempt resolves. Failures are *TokenizationError values
	// carrying the error kind.
	Tokenize(
		ctx context.Context,
		form tokenizationDomain.UpstreamFormData,
	) (*tokenizationDomain.TokenizationResult, error)
}
