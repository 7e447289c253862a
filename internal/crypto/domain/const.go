// Package domain defines cryptographic primitives, constants and errors shared by the
// envelope encryptor and the issuer.
package domain

import "context"

// Algorithm represents the AEAD algorithm used to seal card payloads.
//
// Both supported algorithms take a 256-bit key, a 96-bit nonce and append a 128-bit tag,
// so envelopes produced with either have the same wire shape.
//   - Use AESGCM on CPUs with AES-NI hardware acceleration (the default).
//   - Use ChaCha20 on platforms without AES acceleration.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// KeySize is the size in bytes of every ephemeral AEAD key.
	KeySize = 32

	// NonceSize is the size in bytes of the AEAD nonce (the wire "iv").
	NonceSize = 12

	// WrapAlgorithm names the asymmetric scheme used to wrap ephemeral keys.
	WrapAlgorithm = "RSA-OAEP-256"

	// DefaultWrappingKeyBits is the modulus size used when minting session key pairs.
	DefaultWrappingKeyBits = 2048
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

// Keeper seals and opens small secrets with a key held by a KMS.
// *gocloud.dev/secrets.Keeper satisfies this interface.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
