// Package service provides the cryptographic building blocks of the hybrid envelope:
// AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), RSA-OAEP key wrapping and KMS keepers.
package service

import (
	"context"
	"io"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
//
// The caller owns the nonce. Envelope keys are single use, so a fresh random nonce per
// key is enough to guarantee a (key, nonce) pair is never repeated.
type AEAD interface {
	// NonceSize returns the nonce length the cipher expects.
	NonceSize() int

	// Seal encrypts and authenticates plaintext and aad, returning ciphertext||tag.
	Seal(nonce, plaintext, aad []byte) ([]byte, error)

	// Open authenticates and decrypts ciphertext||tag produced by Seal.
	Open(nonce, ciphertext, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyWrapper wraps a symmetric key under an asymmetric public key.
// Implementations must not be able to unwrap.
type KeyWrapper interface {
	Wrap(random io.Reader, key []byte) ([]byte, error)
}

// KeyUnwrapper recovers a symmetric key wrapped by the matching KeyWrapper.
type KeyUnwrapper interface {
	Unwrap(wrapped []byte) ([]byte, error)
}

// KMSService opens KMS keepers used to seal key material at rest.
type KMSService interface {
	// OpenKeeper opens a keeper for the KMS provider encoded in keyURI.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.Keeper, error)
}
