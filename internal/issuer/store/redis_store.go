package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	issuerDomain "github.com/allisson/cardtoken/internal/issuer/domain"
)

const sessionKeyPrefix = "cardtoken:session:"

// RedisSessionStore keeps sessions in Redis with a key TTL, so several issuer
// instances can share them.
type RedisSessionStore struct {
	client redis.UniversalClient
}

// NewRedisSessionStore creates a store on an existing client.
func NewRedisSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Save stores session under a key that expires with it. An already expired session
// is rejected with ErrSessionExpired.
func (s *RedisSessionStore) Save(ctx context.Context, session *issuerDomain.Session) error {
	ttl := session.TTL(time.Now())
	if ttl <= 0 {
		return issuerDomain.ErrSessionExpired
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

// Take atomically reads and deletes the session with GETDEL.
func (s *RedisSessionStore) Take(ctx context.Context, sessionID string) (*issuerDomain.Session, error) {
	data, err := s.client.GetDel(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, issuerDomain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to take session from redis: %w", err)
	}

	var session issuerDomain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if session.IsExpired(time.Now()) {
		return nil, issuerDomain.ErrSessionNotFound
	}
	return &session, nil
}

// Ping checks the Redis connection.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
