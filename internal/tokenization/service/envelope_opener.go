package service

import (
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
	cryptoService "github.com/allisson/cardtoken/internal/crypto/service"
	"github.com/allisson/cardtoken/internal/tokenization/domain"
)

// EnvelopeOpener is the verifier side of EnvelopeEncryptor. It derives associated data
// exactly as the encryptor does, so a changed sessionId or origin fails authentication.
type EnvelopeOpener struct {
	aeadManager cryptoService.AEADManager
	algorithm   cryptoDomain.Algorithm
}

// NewEnvelopeOpener creates an opener for envelopes sealed with algorithm.
func NewEnvelopeOpener(aeadManager cryptoService.AEADManager, algorithm cryptoDomain.Algorithm) *EnvelopeOpener {
	return &EnvelopeOpener{
		aeadManager: aeadManager,
		algorithm:   algorithm,
	}
}

// Open unwraps the ephemeral key and opens the payload bound to origin.
// Every failure wraps ErrInvalidEnvelope.
func (o *EnvelopeOpener) Open(
	unwrapper cryptoService.KeyUnwrapper,
	envelope *domain.EnvelopeRequest,
	origin string,
) (*domain.CardPayload, error) {
	nonce, err := base64.StdEncoding.DecodeString(envelope.IV)
	if err != nil || len(nonce) != cryptoDomain.NonceSize {
		return nil, fmt.Errorf("%w: iv must be %d base64-encoded bytes", domain.ErrInvalidEnvelope, cryptoDomain.NonceSize)
	}

	wrappedKey, err := base64.StdEncoding.DecodeString(envelope.WrappedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: wrappedKey is not valid base64", domain.ErrInvalidEnvelope)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.CipherText)
	if err != nil {
		return nil, fmt.Errorf("%w: cipherText is not valid base64", domain.ErrInvalidEnvelope)
	}

	key, err := unwrapper.Unwrap(wrappedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidEnvelope, err)
	}
	defer cryptoDomain.Zero(key)

	cipher, err := o.aeadManager.CreateCipher(key, o.algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidEnvelope, err)
	}

	plaintext, err := cipher.Open(nonce, ciphertext, domain.AssociatedData(envelope.SessionID, origin))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidEnvelope, err)
	}
	defer cryptoDomain.Zero(plaintext)

	payload, err := domain.ParseCardPayload(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidEnvelope, err)
	}
	return payload, nil
}
