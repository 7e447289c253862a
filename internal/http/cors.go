package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/cardtoken/internal/validation"
)

// createCORSMiddleware lets checkout pages call the issuer straight from the browser.
// Each entry of origins must be a bare scheme://host[:port] merchant origin; other
// entries are dropped with a warning. Returns nil when disabled or nothing valid is left.
//
// Credentials are never allowed: the bearer token travels in the Authorization header,
// not in cookies.
func createCORSMiddleware(enabled bool, origins []string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if err := validation.Validate(origin, validation.Required, appValidation.Origin); err != nil {
			logger.Warn("ignoring invalid CORS origin",
				slog.String("origin", origin),
				slog.Any("error", err))
			continue
		}
		allowed = append(allowed, origin)
	}

	if len(allowed) == 0 {
		logger.Warn("CORS enabled but no valid origins configured, CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled", slog.Any("origins", allowed))

	return cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           time.Hour,
	})
}
