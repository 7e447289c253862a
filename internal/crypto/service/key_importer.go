package service

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strings"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
)

// pemArmor matches "-----BEGIN PUBLIC KEY-----" style header and footer lines.
var pemArmor = regexp.MustCompile(`-----[^-]+-----`)

// WrappingKey is an RSA public key restricted to RSA-OAEP (SHA-256) key wrapping.
// It carries no private material, so it cannot decrypt or sign.
type WrappingKey struct {
	pub *rsa.PublicKey
}

// ImportWrappingKey parses a PEM-encoded RSA public key into a WrappingKey.
//
// Framing lines and all whitespace are stripped before the body is base64 decoded, so
// keys that were re-flowed or had their line breaks lost in transit still import.
// The DER body may be PKIX (SubjectPublicKeyInfo) or PKCS#1. Every failure wraps
// ErrInvalidKeyFormat and yields no key.
func ImportWrappingKey(pemText string) (*WrappingKey, error) {
	body := pemArmor.ReplaceAllString(pemText, "")
	body = strings.Join(strings.Fields(body), "")
	if body == "" {
		return nil, fmt.Errorf("%w: empty key body", cryptoDomain.ErrInvalidKeyFormat)
	}

	der, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: body is not valid base64", cryptoDomain.ErrInvalidKeyFormat)
	}

	pub, err := parseRSAPublicKey(der)
	if err != nil {
		return nil, err
	}

	return &WrappingKey{pub: pub}, nil
}

func parseRSAPublicKey(der []byte) (*rsa.PublicKey, error) {
	if key, err := x509.ParsePKIXPublicKey(der); err == nil {
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: key is not an RSA public key", cryptoDomain.ErrInvalidKeyFormat)
		}
		return rsaKey, nil
	}

	if key, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return key, nil
	}

	return nil, fmt.Errorf("%w: DER is neither PKIX nor PKCS#1", cryptoDomain.ErrInvalidKeyFormat)
}

// Size returns the modulus size in bytes.
func (k *WrappingKey) Size() int {
	return k.pub.Size()
}

// MaxWrapSize is the largest key RSA-OAEP-256 can wrap under this modulus.
func (k *WrappingKey) MaxWrapSize() int {
	return k.pub.Size() - 2*sha256.Size - 2
}

// Wrap encrypts key with RSA-OAEP using SHA-256 and an empty label.
func (k *WrappingKey) Wrap(random io.Reader, key []byte) ([]byte, error) {
	if len(key) > k.MaxWrapSize() {
		return nil, fmt.Errorf(
			"%w: %d-byte key exceeds %d-byte OAEP limit",
			cryptoDomain.ErrKeyWrapFailed,
			len(key),
			k.MaxWrapSize(),
		)
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), random, k.pub, key, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyWrapFailed, err)
	}
	return wrapped, nil
}
