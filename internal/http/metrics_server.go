package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/cardtoken/internal/metrics"
)

// MetricsServer exposes /metrics on its own port so scrapes never share the issuer's
// bearer auth or rate limit.
type MetricsServer struct {
	lifecycle
}

// NewMetricsServer builds the metrics server. A nil provider serves only 404s.
func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())

	if metricsProvider != nil {
		router.GET("/metrics", gin.WrapH(metricsProvider.Handler()))
	}

	s := &MetricsServer{lifecycle: newLifecycle("metrics", host, port, logger)}
	s.server.Handler = router
	return s
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown.
func (s *MetricsServer) Start(ctx context.Context) error {
	return s.serve()
}
