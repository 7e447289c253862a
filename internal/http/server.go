// Package http provides the issuer HTTP server, its router and shared middleware.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/cardtoken/internal/config"
	issuerHTTP "github.com/allisson/cardtoken/internal/issuer/http"
	"github.com/allisson/cardtoken/internal/metrics"
)

// ReadinessChecker reports whether the server's dependencies are reachable.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Server represents the issuer HTTP server.
type Server struct {
	lifecycle
	router    *gin.Engine
	readiness ReadinessChecker
}

// NewServer creates a new HTTP server. A nil readiness checker always reports not ready.
func NewServer(
	readiness ReadinessChecker,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		lifecycle: newLifecycle("http", host, port, logger),
		readiness: readiness,
	}
}

// SetupRouter builds the issuer routes:
//
//	GET  /health
//	GET  /ready
//	POST /v1/sessions  (bearer auth, rate limit)
//	POST /v1/tokenize  (bearer auth, rate limit)
//
// ctx bounds background work started by middleware, such as limiter cleanup.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	issuerHandler *issuerHTTP.IssuerHandler,
	credentials issuerHTTP.CredentialVerifier,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSOrigins(), s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace, "/health", "/ready"))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	// Rate limit first so unauthenticated callers spend their budget guessing tokens.
	if cfg.RateLimitEnabled {
		v1.Use(issuerHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	v1.Use(issuerHTTP.BearerAuthMiddleware(credentials, s.logger))
	v1.POST("/sessions", issuerHandler.CreateSessionHandler)
	v1.POST("/tokenize", issuerHandler.TokenizeHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown. SetupRouter must be called first.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router
	return s.serve()
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.readiness == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"session_store": "error"},
		})
		return
	}

	if err := s.readiness.Ready(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"session_store": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"session_store": "ok"},
	})
}
