// Package service builds and opens hybrid envelopes: a single-use AEAD key seals the card
// payload and is itself wrapped under the session's RSA-OAEP key.
package service

import (
	"encoding/base64"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
	cryptoService "github.com/allisson/cardtoken/internal/crypto/service"
	"github.com/allisson/cardtoken/internal/tokenization/domain"
)

// EnvelopeEncryptor seals card payloads into EnvelopeRequests.
type EnvelopeEncryptor struct {
	aeadManager cryptoService.AEADManager
	algorithm   cryptoDomain.Algorithm
	random      io.Reader
}

// NewEnvelopeEncryptor creates an encryptor. random is the entropy source for keys,
// nonces and OAEP padding (crypto/rand.Reader outside tests).
func NewEnvelopeEncryptor(
	aeadManager cryptoService.AEADManager,
	algorithm cryptoDomain.Algorithm,
	random io.Reader,
) *EnvelopeEncryptor {
	return &EnvelopeEncryptor{
		aeadManager: aeadManager,
		algorithm:   algorithm,
		random:      random,
	}
}

// Encrypt imports the session public key and seals payload under it.
func (e *EnvelopeEncryptor) Encrypt(
	session *domain.SessionContext,
	payload domain.CardPayload,
) (*domain.EnvelopeRequest, error) {
	wrappingKey, err := cryptoService.ImportWrappingKey(session.PublicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKeyFormat, err)
	}
	return e.Seal(wrappingKey, session, payload)
}

// Seal runs the envelope steps in their fixed order: key, nonce, associated data,
// canonical plaintext, AEAD seal, key wrap. The raw key and the plaintext are zeroed on
// every path and nothing partial is returned on failure.
func (e *EnvelopeEncryptor) Seal(
	wrapper cryptoService.KeyWrapper,
	session *domain.SessionContext,
	payload domain.CardPayload,
) (*domain.EnvelopeRequest, error) {
	key := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(key)
	if _, err := io.ReadFull(e.random, key); err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", domain.ErrKeyGeneration, err)
	}

	nonce := make([]byte, cryptoDomain.NonceSize)
	if _, err := io.ReadFull(e.random, nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", domain.ErrKeyGeneration, err)
	}

	aad := session.AssociatedData()

	plaintext, err := payload.Canonical()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncryption, err)
	}
	defer cryptoDomain.Zero(plaintext)

	cipher, err := e.aeadManager.CreateCipher(key, e.algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncryption, err)
	}

	ciphertext, err := cipher.Seal(nonce, plaintext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncryption, err)
	}

	wrappedKey, err := wrapper.Wrap(e.random, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKeyWrap, err)
	}

	return &domain.EnvelopeRequest{
		KeyID:      session.KeyID,
		IV:         base64.StdEncoding.EncodeToString(nonce),
		WrappedKey: base64.StdEncoding.EncodeToString(wrappedKey),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
		SessionID:  session.SessionID,
	}, nil
}
