package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
)

// UnwrappingKey is the issuer-side half of a session key pair.
type UnwrappingKey struct {
	priv *rsa.PrivateKey
}

// GenerateUnwrappingKey mints a fresh RSA key pair of the given modulus size.
func GenerateUnwrappingKey(random io.Reader, bits int) (*UnwrappingKey, error) {
	priv, err := rsa.GenerateKey(random, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}
	return &UnwrappingKey{priv: priv}, nil
}

// ParseUnwrappingKey restores a key from its PKCS#8 DER form.
func ParseUnwrappingKey(der []byte) (*UnwrappingKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidKeyFormat, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: key is not an RSA private key", cryptoDomain.ErrInvalidKeyFormat)
	}
	return &UnwrappingKey{priv: priv}, nil
}

// MarshalPrivateKey returns the PKCS#8 DER encoding of the private key.
// Callers must seal the result before it leaves memory.
func (k *UnwrappingKey) MarshalPrivateKey() ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(k.priv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	return der, nil
}

// PublicKeyPEM returns the public half as a "PUBLIC KEY" (PKIX) PEM block.
func (k *UnwrappingKey) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&k.priv.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// WrappingKey returns the public half restricted to wrapping.
func (k *UnwrappingKey) WrappingKey() *WrappingKey {
	return &WrappingKey{pub: &k.priv.PublicKey}
}

// Unwrap decrypts an RSA-OAEP-256 wrapped key.
func (k *UnwrappingKey) Unwrap(wrapped []byte) ([]byte, error) {
	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, k.priv, wrapped, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyUnwrapFailed, err)
	}
	return key, nil
}
