package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/cardtoken/internal/config"
	issuerStore "github.com/allisson/cardtoken/internal/issuer/store"
)

func issuerTestConfig() *config.Config {
	return &config.Config{
		LogLevel:         "error",
		ServerHost:       "127.0.0.1",
		ServerPort:       8080,
		IssuerAPITokens:  "issuer-token",
		AEADAlgorithm:    "aes-gcm",
		SessionTTL:       time.Minute,
		SessionStore:     "memory",
		SessionKeyBits:   2048,
		TokenFormat:      "uuid",
		MetricsEnabled:   false,
		MetricsNamespace: "cardtoken_test",
	}
}

func TestNewContainer(t *testing.T) {
	cfg := issuerTestConfig()
	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

func TestContainerLogger(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "debug"})

	assert.Nil(t, container.logger)
	logger := container.Logger()
	require.NotNil(t, logger)
	assert.Same(t, logger, container.Logger())

	assert.NotNil(t, NewContainer(&config.Config{LogLevel: "invalid"}).Logger())
}

func TestContainerSessionStore(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		container := NewContainer(issuerTestConfig())

		store, err := container.SessionStore()
		require.NoError(t, err)
		assert.IsType(t, &issuerStore.MemorySessionStore{}, store)
		assert.NoError(t, container.Shutdown(context.Background()))
	})

	t.Run("Redis", func(t *testing.T) {
		cfg := issuerTestConfig()
		cfg.SessionStore = "redis"
		cfg.RedisAddr = "127.0.0.1:0"
		container := NewContainer(cfg)

		store, err := container.SessionStore()
		require.NoError(t, err)
		assert.IsType(t, &issuerStore.RedisSessionStore{}, store)
		assert.NoError(t, container.Shutdown(context.Background()))
	})

	t.Run("Unsupported", func(t *testing.T) {
		cfg := issuerTestConfig()
		cfg.SessionStore = "postgres"
		container := NewContainer(cfg)

		_, err := container.SessionStore()
		assert.Error(t, err)

		// The stored error is returned on later calls.
		_, err = container.SessionStore()
		assert.Error(t, err)
	})
}

func TestContainerCredentialService(t *testing.T) {
	container := NewContainer(issuerTestConfig())

	credentials, err := container.CredentialService()
	require.NoError(t, err)
	assert.Equal(t, 1, credentials.Len())
	assert.True(t, credentials.Verify("issuer-token"))

	again, err := container.CredentialService()
	require.NoError(t, err)
	assert.Same(t, credentials, again)
}

func TestContainerIssuerUseCase(t *testing.T) {
	ctx := context.Background()
	container := NewContainer(issuerTestConfig())
	defer func() {
		assert.NoError(t, container.Shutdown(ctx))
	}()

	useCase, err := container.IssuerUseCase(ctx)
	require.NoError(t, err)

	key, err := useCase.CreateSession(ctx, "https://shop.example")
	require.NoError(t, err)
	assert.NotEmpty(t, key.Session.ID)
	assert.Contains(t, key.PublicKeyPEM, "PUBLIC KEY")

	assert.NoError(t, useCase.Ready(ctx))
}

func TestContainerIssuerUseCase_InvalidTokenFormat(t *testing.T) {
	ctx := context.Background()
	cfg := issuerTestConfig()
	cfg.TokenFormat = "emoji"
	container := NewContainer(cfg)
	defer func() {
		assert.NoError(t, container.Shutdown(ctx))
	}()

	_, err := container.IssuerUseCase(ctx)
	assert.Error(t, err)
}

func TestContainerHTTPServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container := NewContainer(issuerTestConfig())
	defer func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	}()

	server, err := container.HTTPServer(ctx)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.NotNil(t, server.GetHandler())

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, metricsServer)
}

func TestContainerOrchestrator(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		cfg := issuerTestConfig()
		cfg.APIBaseURL = "https://issuer.example/v1"
		cfg.APIToken = "client-token"
		cfg.APITimeout = 30 * time.Second
		cfg.Origin = "https://shop.example"
		container := NewContainer(cfg)

		orchestrator, err := container.Orchestrator()
		require.NoError(t, err)
		assert.NotNil(t, orchestrator)

		useCase, err := container.TokenizationUseCase()
		require.NoError(t, err)
		assert.NotNil(t, useCase)
	})

	t.Run("Error_InvalidClientConfig", func(t *testing.T) {
		container := NewContainer(issuerTestConfig())

		_, err := container.Orchestrator()
		assert.Error(t, err)

		_, err = container.TokenizationUseCase()
		assert.Error(t, err)
	})
}

func TestContainerShutdown(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})

	assert.NoError(t, container.Shutdown(context.TODO()))
}
