package domain

import (
	"github.com/allisson/cardtoken/internal/errors"
)

// Cryptographic operation error definitions.
//
// These wrap the standard errors from internal/errors so the HTTP layer can map them
// without knowing about cryptography.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a symmetric key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidNonceSize indicates a nonce does not match the cipher's nonce size.
	ErrInvalidNonceSize = errors.Wrap(errors.ErrInvalidInput, "invalid nonce size")

	// ErrDecryptionFailed indicates an AEAD open failed.
	//
	// Wrong key, wrong nonce, wrong associated data and tampered ciphertext all surface
	// as this single error so callers learn nothing about which input was wrong.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrInvalidKeyFormat indicates PEM/DER input that does not hold a usable RSA key.
	ErrInvalidKeyFormat = errors.Wrap(errors.ErrInvalidInput, "invalid key format")

	// ErrKeyWrapFailed indicates RSA-OAEP encryption of a symmetric key failed.
	ErrKeyWrapFailed = errors.Wrap(errors.ErrInvalidInput, "key wrap failed")

	// ErrUnsupportedKeeper indicates a session keeper URI with an unknown scheme.
	ErrUnsupportedKeeper = errors.Wrap(errors.ErrInvalidInput, "unsupported session keeper")

	// ErrKeyUnwrapFailed indicates RSA-OAEP decryption of a wrapped key failed.
	ErrKeyUnwrapFailed = errors.Wrap(errors.ErrInvalidInput, "key unwrap failed")
)
