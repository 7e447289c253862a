// Package store keeps issuer sessions until they are used or expire. Sessions are
// single use: Take returns a session at most once.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	issuerDomain "github.com/allisson/cardtoken/internal/issuer/domain"
)

// MemorySessionStore keeps sessions in process memory with per-entry expiry.
type MemorySessionStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewMemorySessionStore creates an in-memory store that purges expired sessions every
// cleanupInterval.
func NewMemorySessionStore(cleanupInterval time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

// Save stores session until its expiry. An already expired session is rejected
// with ErrSessionExpired.
func (s *MemorySessionStore) Save(ctx context.Context, session *issuerDomain.Session) error {
	ttl := session.TTL(time.Now())
	if ttl <= 0 {
		return issuerDomain.ErrSessionExpired
	}
	s.cache.Set(session.ID, session, ttl)
	return nil
}

// Take removes and returns the session. A missing or expired session returns
// ErrSessionNotFound.
func (s *MemorySessionStore) Take(ctx context.Context, sessionID string) (*issuerDomain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, found := s.cache.Get(sessionID)
	if !found {
		return nil, issuerDomain.ErrSessionNotFound
	}
	s.cache.Delete(sessionID)

	session, ok := value.(*issuerDomain.Session)
	if !ok || session.IsExpired(time.Now()) {
		return nil, issuerDomain.ErrSessionNotFound
	}
	return session, nil
}

// Ping always succeeds.
func (s *MemorySessionStore) Ping(ctx context.Context) error {
	return nil
}

// Close drops all sessions.
func (s *MemorySessionStore) Close() error {
	s.cache.Flush()
	return nil
}
