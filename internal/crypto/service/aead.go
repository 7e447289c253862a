package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
)

// sealer adapts a cipher.AEAD to the AEAD interface. AES-256-GCM and ChaCha20-Poly1305
// share it: both take a 32-byte key and a 12-byte nonce and append a 16-byte tag, so an
// envelope has the same wire shape whichever one sealed it.
//
// A sealer is stateless and safe for concurrent use.
type sealer struct {
	alg  cryptoDomain.Algorithm
	aead cipher.AEAD
}

func (s *sealer) NonceSize() int {
	return s.aead.NonceSize()
}

func (s *sealer) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != s.aead.NonceSize() {
		return nil, cryptoDomain.ErrInvalidNonceSize
	}
	return s.aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open never says which input was wrong: every authentication failure is
// ErrDecryptionFailed.
func (s *sealer) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != s.aead.NonceSize() {
		return nil, cryptoDomain.ErrInvalidNonceSize
	}
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", cryptoDomain.ErrDecryptionFailed, s.alg)
	}
	return plaintext, nil
}

// NewAESGCM returns an AES-256-GCM cipher. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &sealer{alg: cryptoDomain.AESGCM, aead: aead}, nil
}

// NewChaCha20Poly1305 returns a ChaCha20-Poly1305 cipher. The key must be exactly 32 bytes.
func NewChaCha20Poly1305(key []byte) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}
	return &sealer{alg: cryptoDomain.ChaCha20, aead: aead}, nil
}

var cipherFactories = map[cryptoDomain.Algorithm]func(key []byte) (AEAD, error){
	cryptoDomain.AESGCM:   NewAESGCM,
	cryptoDomain.ChaCha20: NewChaCha20Poly1305,
}

// AEADManagerService creates AEAD ciphers by algorithm.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher returns ErrInvalidKeySize for a key that is not 32 bytes and
// ErrUnsupportedAlgorithm for an unknown algorithm.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	factory, ok := cipherFactories[alg]
	if !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	return factory(key)
}
