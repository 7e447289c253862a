package app

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
	"github.com/allisson/cardtoken/internal/tokenization/gateway"
	tokenizationService "github.com/allisson/cardtoken/internal/tokenization/service"
	tokenizationUseCase "github.com/allisson/cardtoken/internal/tokenization/usecase"
)

// Orchestrator returns the client-side tokenization orchestrator talking to API_BASE_URL.
func (c *Container) Orchestrator() (*tokenizationUseCase.Orchestrator, error) {
	var err error
	c.orchestratorInit.Do(func() {
		c.orchestrator, err = c.initOrchestrator()
		if err != nil {
			c.setInitError("orchestrator", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("orchestrator"); storedErr != nil {
		return nil, storedErr
	}
	return c.orchestrator, nil
}

// TokenizationUseCase returns the orchestrator wrapped with metrics recording.
func (c *Container) TokenizationUseCase() (tokenizationUseCase.TokenizationUseCase, error) {
	var err error
	c.tokenizationUseCaseInit.Do(func() {
		c.tokenizationUseCase, err = c.initTokenizationUseCase()
		if err != nil {
			c.setInitError("tokenizationUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("tokenizationUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenizationUseCase, nil
}

func (c *Container) initOrchestrator() (*tokenizationUseCase.Orchestrator, error) {
	if err := c.config.ValidateClient(); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.AEADAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid AEAD_ALGORITHM: %w", err)
	}

	logger := c.Logger()
	gatewayConfig := gateway.Config{
		BaseURL: c.config.APIBaseURL,
		Token:   c.config.APIToken,
		Timeout: c.config.APITimeout,
	}
	doer := gateway.NewHTTPClient()

	return tokenizationUseCase.NewOrchestrator(
		gateway.NewSessionProvider(gatewayConfig, doer, logger),
		tokenizationService.NewEnvelopeEncryptor(c.AEADManager(), algorithm, rand.Reader),
		gateway.NewTokenizeClient(gatewayConfig, doer, logger),
		c.config.Origin,
		logger,
	), nil
}

func (c *Container) initTokenizationUseCase() (tokenizationUseCase.TokenizationUseCase, error) {
	orchestrator, err := c.Orchestrator()
	if err != nil {
		return nil, fmt.Errorf("failed to get orchestrator for tokenization use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for tokenization use case: %w", err)
	}

	return tokenizationUseCase.NewTokenizationUseCaseWithMetrics(orchestrator, businessMetrics), nil
}
