// Package http provides the issuer's HTTP handlers and request middleware.
package http

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/cardtoken/internal/errors"
	"github.com/allisson/cardtoken/internal/httputil"
)

// CredentialVerifier reports whether a presented bearer token is accepted.
type CredentialVerifier interface {
	Verify(token string) bool
}

// BearerAuthMiddleware accepts requests whose "Authorization: Bearer <token>" header
// carries a token the verifier accepts.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Unknown token → 401 Unauthorized
func BearerAuthMiddleware(verifier CredentialVerifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		const bearerPrefix = "bearer "
		if len(authHeader) <= len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		if !verifier.Verify(authHeader[len(bearerPrefix):]) {
			logger.Debug("authentication failed: unknown bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// ipRateLimiterStore holds per-IP rate limiters with automatic cleanup.
type ipRateLimiterStore struct {
	limiters sync.Map // map[string]*ipRateLimiterEntry
	rps      float64
	burst    int
}

type ipRateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// RateLimitMiddleware enforces per-IP rate limiting with a token bucket per client IP
// (c.ClientIP, which honours X-Forwarded-For and X-Real-IP). Stale limiters are purged
// until ctx is done.
//
// Returns 429 Too Many Requests with a Retry-After header once the bucket is empty.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &ipRateLimiterStore{
		rps:   rps,
		burst: burst,
	}

	go store.cleanupStale(ctx, 5*time.Minute, time.Hour)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limiter := store.getLimiter(clientIP)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()

			logger.Debug("rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			httputil.HandleErrorGin(c, apperrors.ErrRateLimited, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (s *ipRateLimiterStore) getLimiter(ip string) *rate.Limiter {
	now := time.Now()
	entry := &ipRateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: now,
	}
	if existing, loaded := s.limiters.LoadOrStore(ip, entry); loaded {
		entry = existing.(*ipRateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
	}
	return entry.limiter
}

// cleanupStale removes limiters idle for longer than maxIdle, every interval.
func (s *ipRateLimiterStore) cleanupStale(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purge(time.Now().Add(-maxIdle))
		}
	}
}

func (s *ipRateLimiterStore) purge(threshold time.Time) {
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*ipRateLimiterEntry)
		entry.mu.Lock()
		stale := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if stale {
			s.limiters.Delete(key)
		}
		return true
	})
}
