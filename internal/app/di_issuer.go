package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
	"github.com/allisson/cardtoken/internal/http"
	issuerDomain "github.com/allisson/cardtoken/internal/issuer/domain"
	issuerHTTP "github.com/allisson/cardtoken/internal/issuer/http"
	issuerService "github.com/allisson/cardtoken/internal/issuer/service"
	issuerStore "github.com/allisson/cardtoken/internal/issuer/store"
	issuerUseCase "github.com/allisson/cardtoken/internal/issuer/usecase"
	tokenizationService "github.com/allisson/cardtoken/internal/tokenization/service"
)

// memoryStoreCleanupInterval is how often the in-memory session store purges expired sessions.
const memoryStoreCleanupInterval = time.Minute

// verifiedCredentialTTL is how long a token that matched a hash skips re-derivation.
const verifiedCredentialTTL = 5 * time.Minute

// SessionKeeper returns the KMS keeper that seals session private keys at rest.
func (c *Container) SessionKeeper(ctx context.Context) (cryptoDomain.Keeper, error) {
	var err error
	c.sessionKeeperInit.Do(func() {
		c.sessionKeeper, err = c.initSessionKeeper(ctx)
		if err != nil {
			c.setInitError("sessionKeeper", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("sessionKeeper"); storedErr != nil {
		return nil, storedErr
	}
	return c.sessionKeeper, nil
}

// SessionStore returns the configured session store (memory or redis).
func (c *Container) SessionStore() (issuerUseCase.SessionStore, error) {
	var err error
	c.sessionStoreInit.Do(func() {
		c.sessionStore, err = c.initSessionStore()
		if err != nil {
			c.setInitError("sessionStore", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("sessionStore"); storedErr != nil {
		return nil, storedErr
	}
	return c.sessionStore, nil
}

// CredentialService returns the verifier for issuer bearer credentials.
func (c *Container) CredentialService() (*issuerService.CredentialService, error) {
	var err error
	c.credentialServiceInit.Do(func() {
		c.credentialService, err = issuerService.NewCredentialService(
			c.config.IssuerTokens(),
			c.config.IssuerTokenHashes(),
			verifiedCredentialTTL,
		)
		if err != nil {
			c.setInitError("credentialService", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("credentialService"); storedErr != nil {
		return nil, storedErr
	}
	return c.credentialService, nil
}

// IssuerUseCase returns the issuer use case wrapped with metrics recording.
func (c *Container) IssuerUseCase(ctx context.Context) (issuerUseCase.IssuerUseCase, error) {
	var err error
	c.issuerUseCaseInit.Do(func() {
		c.issuerUseCase, err = c.initIssuerUseCase(ctx)
		if err != nil {
			c.setInitError("issuerUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("issuerUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.issuerUseCase, nil
}

// IssuerHandler returns the issuer HTTP handler.
func (c *Container) IssuerHandler(ctx context.Context) (*issuerHTTP.IssuerHandler, error) {
	var err error
	c.issuerHandlerInit.Do(func() {
		var useCase issuerUseCase.IssuerUseCase
		useCase, err = c.IssuerUseCase(ctx)
		if err != nil {
			err = fmt.Errorf("failed to get issuer use case for issuer handler: %w", err)
			c.setInitError("issuerHandler", err)
			return
		}
		c.issuerHandler = issuerHTTP.NewIssuerHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("issuerHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.issuerHandler, nil
}

// HTTPServer returns the issuer HTTP server with its router configured.
// ctx bounds the server's background middleware work.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer(ctx)
		if err != nil {
			c.setInitError("httpServer", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("httpServer"); storedErr != nil {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.setInitError("metricsServer", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("metricsServer"); storedErr != nil {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// initSessionKeeper opens the configured keeper. Without SESSION_KEEPER_URI a random
// local key is used, so sealed sessions do not survive a restart.
func (c *Container) initSessionKeeper(ctx context.Context) (cryptoDomain.Keeper, error) {
	keyURI := c.config.SessionKeeperURI
	if keyURI == "" {
		key := make([]byte, cryptoDomain.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral session keeper key: %w", err)
		}
		keyURI = "base64key://" + base64.URLEncoding.EncodeToString(key)
		cryptoDomain.Zero(key)
		c.Logger().Warn("SESSION_KEEPER_URI not set, sealing session keys with an ephemeral local key")
	}

	keeper, err := c.KMSService().OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	return keeper, nil
}

func (c *Container) initSessionStore() (issuerUseCase.SessionStore, error) {
	switch c.config.SessionStore {
	case "memory":
		return issuerStore.NewMemorySessionStore(memoryStoreCleanupInterval), nil
	case "redis":
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{c.config.RedisAddr},
			Password: c.config.RedisPassword,
			DB:       c.config.RedisDB,
		})
		return issuerStore.NewRedisSessionStore(client), nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", c.config.SessionStore)
	}
}

func (c *Container) initIssuerUseCase(ctx context.Context) (issuerUseCase.IssuerUseCase, error) {
	store, err := c.SessionStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get session store for issuer use case: %w", err)
	}

	keeper, err := c.SessionKeeper(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get session keeper for issuer use case: %w", err)
	}

	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.AEADAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid AEAD_ALGORITHM: %w", err)
	}

	formatType, err := issuerDomain.ParseFormatType(c.config.TokenFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_FORMAT: %w", err)
	}

	generator, err := issuerService.NewTokenGenerator(formatType)
	if err != nil {
		return nil, fmt.Errorf("failed to create token generator: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for issuer use case: %w", err)
	}

	useCase := issuerUseCase.NewIssuerUseCase(
		store,
		keeper,
		tokenizationService.NewEnvelopeOpener(c.AEADManager(), algorithm),
		generator,
		issuerUseCase.Config{
			SessionTTL: c.config.SessionTTL,
			KeyBits:    c.config.SessionKeyBits,
		},
		c.Logger(),
	)

	return issuerUseCase.NewIssuerUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	useCase, err := c.IssuerUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer use case for http server: %w", err)
	}

	handler, err := c.IssuerHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer handler for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	credentials, err := c.CredentialService()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential service for http server: %w", err)
	}

	server := http.NewServer(useCase, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(ctx, c.config, handler, credentials, provider)
	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
