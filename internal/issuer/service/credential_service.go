package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/allisson/go-pwdhash"
	"github.com/patrickmn/go-cache"

	apperrors "github.com/allisson/cardtoken/internal/errors"
)

// hashedCredentialPrefix marks an accepted credential stored as an Argon2id PHC string.
const hashedCredentialPrefix = "$argon2id$"

// CredentialService issues and verifies the bearer credentials the issuer API accepts.
type CredentialService struct {
	plain    [][]byte
	hashed   []string
	hasher   *pwdhash.PasswordHasher
	verified *cache.Cache
}

// NewCredentialService accepts plaintext tokens and Argon2id hashes. Entries starting
// with "$argon2id$" are treated as hashes. A token that matched a hash is remembered for
// verifiedTTL so later requests skip the key derivation; zero disables the memo.
func NewCredentialService(plain, hashed []string, verifiedTTL time.Duration) (*CredentialService, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create credential hasher")
	}

	s := &CredentialService{hasher: hasher}
	for _, entry := range append(append([]string{}, plain...), hashed...) {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "":
		case strings.HasPrefix(entry, hashedCredentialPrefix):
			s.hashed = append(s.hashed, entry)
		default:
			s.plain = append(s.plain, []byte(entry))
		}
	}
	if verifiedTTL > 0 {
		s.verified = cache.New(verifiedTTL, 2*verifiedTTL)
	}
	return s, nil
}

// Generate returns a new random credential and its Argon2id hash.
func (s *CredentialService) Generate() (plain string, hashed string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate credential")
	}
	plain = base64.RawURLEncoding.EncodeToString(raw)

	hashed, err = s.hasher.Hash([]byte(plain))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to hash credential")
	}
	return plain, hashed, nil
}

// Verify reports whether token is one of the accepted credentials.
func (s *CredentialService) Verify(token string) bool {
	if token == "" {
		return false
	}

	presented := []byte(token)
	for _, accepted := range s.plain {
		if subtle.ConstantTimeCompare(presented, accepted) == 1 {
			return true
		}
	}

	if len(s.hashed) == 0 {
		return false
	}

	digest := sha256.Sum256(presented)
	memoKey := hex.EncodeToString(digest[:])
	if s.verified != nil {
		if _, found := s.verified.Get(memoKey); found {
			return true
		}
	}

	for _, hash := range s.hashed {
		ok, err := s.hasher.Verify(presented, hash)
		if err != nil || !ok {
			continue
		}
		if s.verified != nil {
			s.verified.SetDefault(memoKey, struct{}{})
		}
		return true
	}
	return false
}

// Len returns how many credentials are accepted.
func (s *CredentialService) Len() int {
	return len(s.plain) + len(s.hashed)
}
