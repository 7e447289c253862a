// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	appValidation "github.com/allisson/cardtoken/internal/validation"
)

// Config holds all application configuration.
type Config struct {
	// APIBaseURL is the issuer base URL the client posts sessions and envelopes to.
	APIBaseURL string
	// APIToken is the bearer credential presented to the issuer.
	APIToken string
	// APITimeout bounds each session and tokenize call.
	APITimeout time.Duration
	// Origin is the merchant origin bound into every envelope's associated data.
	Origin string
	// AEADAlgorithm selects the envelope cipher ("aes-gcm" or "chacha20-poly1305").
	AEADAlgorithm string

	// ServerHost is the host address the issuer will bind to.
	ServerHost string
	// ServerPort is the port number the issuer will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// IssuerAPITokens is a comma-separated list of bearer tokens the issuer accepts.
	IssuerAPITokens string
	// IssuerAPITokenHashes is a semicolon-separated list of Argon2id hashes of accepted
	// bearer tokens, as printed by create-api-token. Quote the value in .env files.
	IssuerAPITokenHashes string

	// RateLimitEnabled indicates whether per-IP rate limiting of the issuer API is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size per client IP.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// SessionTTL is how long a minted session key stays usable.
	SessionTTL time.Duration
	// SessionStore selects the session backend ("memory" or "redis").
	SessionStore string
	// RedisAddr is the redis address used when SessionStore is "redis".
	RedisAddr string
	// RedisPassword is the optional redis password.
	RedisPassword string
	// RedisDB is the redis logical database.
	RedisDB int
	// SessionKeeperURI is the gocloud.dev/secrets URI that seals session private keys.
	// Empty means an ephemeral local key generated at startup.
	SessionKeeperURI string
	// SessionKeyBits is the RSA modulus size for session key pairs.
	SessionKeyBits int
	// TokenFormat selects the issued token format.
	TokenFormat string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Client configuration
		APIBaseURL:    env.GetString("API_BASE_URL", "http://localhost:8080/v1"),
		APIToken:      env.GetString("API_TOKEN", ""),
		APITimeout:    env.GetDuration("API_TIMEOUT_SECONDS", 30, time.Second),
		Origin:        env.GetString("ORIGIN", ""),
		AEADAlgorithm: env.GetString("AEAD_ALGORITHM", "aes-gcm"),

		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Issuer auth
		IssuerAPITokens:      env.GetString("ISSUER_API_TOKENS", ""),
		IssuerAPITokenHashes: env.GetString("ISSUER_API_TOKEN_HASHES", ""),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "cardtoken"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Sessions
		SessionTTL:       env.GetDuration("SESSION_TTL_SECONDS", 900, time.Second),
		SessionStore:     env.GetString("SESSION_STORE", "memory"),
		RedisAddr:        env.GetString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    env.GetString("REDIS_PASSWORD", ""),
		RedisDB:          env.GetInt("REDIS_DB", 0),
		SessionKeeperURI: env.GetString("SESSION_KEEPER_URI", ""),
		SessionKeyBits:   env.GetInt("SESSION_KEY_BITS", 2048),
		TokenFormat:      env.GetString("TOKEN_FORMAT", "uuid"),
	}
}

// ValidateClient checks the settings the tokenize command depends on.
func (c *Config) ValidateClient() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.APIBaseURL, validation.Required, appValidation.NotBlank),
		validation.Field(&c.APIToken, validation.Required, appValidation.NotBlank),
		validation.Field(&c.APITimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Origin, validation.Required, appValidation.Origin),
		validation.Field(&c.AEADAlgorithm, validation.In("aes-gcm", "chacha20-poly1305")),
	)
	return appValidation.WrapValidationError(err)
}

// ValidateServer checks the settings the issuer server depends on.
func (c *Config) ValidateServer() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.SessionTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.SessionStore, validation.Required, validation.In("memory", "redis")),
		validation.Field(&c.SessionKeyBits, validation.Required, validation.Min(2048)),
		validation.Field(&c.TokenFormat, validation.In("uuid", "numeric", "luhn-preserving", "alphanumeric")),
		validation.Field(&c.IssuerAPITokens,
			validation.When(len(c.IssuerTokenHashes()) == 0, validation.Required, appValidation.NotBlank)),
	)
	return appValidation.WrapValidationError(err)
}

// IssuerTokens returns the accepted issuer bearer tokens.
func (c *Config) IssuerTokens() []string {
	return splitList(c.IssuerAPITokens)
}

// IssuerTokenHashes returns the accepted Argon2id token hashes.
func (c *Config) IssuerTokenHashes() []string {
	return splitListBy(c.IssuerAPITokenHashes, ";")
}

// CORSOrigins returns the configured CORS origins.
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowOrigins)
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

func splitList(s string) []string {
	return splitListBy(s, ",")
}

func splitListBy(s, sep string) []string {
	var out []string
	for part := range strings.SplitSeq(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
