// Package integration provides end-to-end tests of the tokenization client against the
// sandbox issuer API, for both session store backends.
package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/cardtoken/internal/app"
	"github.com/allisson/cardtoken/internal/cardvalidation"
	"github.com/allisson/cardtoken/internal/config"
	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
	cryptoService "github.com/allisson/cardtoken/internal/crypto/service"
	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
	"github.com/allisson/cardtoken/internal/tokenization/gateway"
	tokenizationService "github.com/allisson/cardtoken/internal/tokenization/service"
	tokenizationUseCase "github.com/allisson/cardtoken/internal/tokenization/usecase"
)

const (
	issuerToken = "integration-token"
	shopOrigin  = "https://shop.example"
)

var sessionStores = []string{"memory", "redis"}

// integrationTestContext holds the running issuer and a client container pointed at it.
type integrationTestContext struct {
	issuer *app.Container
	client *app.Container
	server *httptest.Server
	cancel context.CancelFunc
}

func setupIntegrationTest(t *testing.T, sessionStore string, algorithm string) *integrationTestContext {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuerCfg := &config.Config{
		LogLevel:         "error",
		ServerHost:       "127.0.0.1",
		ServerPort:       8080,
		IssuerAPITokens:  issuerToken,
		AEADAlgorithm:    algorithm,
		SessionTTL:       time.Minute,
		SessionStore:     sessionStore,
		SessionKeyBits:   2048,
		TokenFormat:      "luhn-preserving",
		MetricsEnabled:   false,
		MetricsNamespace: "cardtoken_integration",
	}
	if sessionStore == "redis" {
		issuerCfg.RedisAddr = miniredis.RunT(t).Addr()
	}

	ctx, cancel := context.WithCancel(context.Background())
	issuer := app.NewContainer(issuerCfg)
	server, err := issuer.HTTPServer(ctx)
	require.NoError(t, err, "failed to build issuer server")

	httpServer := httptest.NewServer(server.GetHandler())

	client := app.NewContainer(&config.Config{
		LogLevel:         "error",
		APIBaseURL:       httpServer.URL + "/v1",
		APIToken:         issuerToken,
		APITimeout:       10 * time.Second,
		Origin:           shopOrigin,
		AEADAlgorithm:    algorithm,
		MetricsNamespace: "cardtoken_integration",
	})

	return &integrationTestContext{
		issuer: issuer,
		client: client,
		server: httpServer,
		cancel: cancel,
	}
}

func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()
	ctx.server.Close()
	ctx.cancel()
	assert.NoError(t, ctx.client.Shutdown(context.Background()))
	assert.NoError(t, ctx.issuer.Shutdown(context.Background()))
}

func (ctx *integrationTestContext) gatewayConfig(token string) gateway.Config {
	return gateway.Config{
		BaseURL: ctx.server.URL + "/v1",
		Token:   token,
		Timeout: 10 * time.Second,
	}
}

func validForm() tokenizationDomain.UpstreamFormData {
	return tokenizationDomain.UpstreamFormData{
		CardholderName: "Jane O'Neil",
		EncCardNumber:  "hf-enc-card-number-0001",
		EncCVV:         "hf-enc-cvv-01",
		ExpiryDate:     time.Now().AddDate(2, 0, 0).Format("01/06"),
	}
}

func TestIntegration_Health_BasicChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, store := range sessionStores {
		t.Run(store, func(t *testing.T) {
			ctx := setupIntegrationTest(t, store, string(cryptoDomain.AESGCM))
			defer teardownIntegrationTest(t, ctx)

			for _, path := range []string{"/health", "/ready"} {
				resp, err := http.Get(ctx.server.URL + path)
				require.NoError(t, err)
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, resp.Body.Close())
				require.NoError(t, err)

				assert.Equal(t, http.StatusOK, resp.StatusCode, path)
				assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
				assert.NotEmpty(t, body)
			}
		})
	}
}

func TestIntegration_Tokenization_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, store := range sessionStores {
		for _, algorithm := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
			t.Run(store+"/"+string(algorithm), func(t *testing.T) {
				ctx := setupIntegrationTest(t, store, string(algorithm))
				defer teardownIntegrationTest(t, ctx)

				useCase, err := ctx.client.TokenizationUseCase()
				require.NoError(t, err)

				result, err := useCase.Tokenize(context.Background(), validForm())
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.Len(t, result.Token, 16)
				assert.True(t, cardvalidation.LuhnValid(result.Token))

				// Each attempt acquires a fresh session, so a second attempt also succeeds.
				second, err := useCase.Tokenize(context.Background(), validForm())
				require.NoError(t, err)
				assert.NotEqual(t, result.Token, second.Token)
			})
		}
	}
}

func TestIntegration_Tokenization_CallbacksFireOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t, "memory", string(cryptoDomain.AESGCM))
	defer teardownIntegrationTest(t, ctx)

	orchestrator, err := ctx.client.Orchestrator()
	require.NoError(t, err)

	var successes, failures int
	var states []tokenizationDomain.State
	attempt := orchestrator.Start(context.Background(), validForm(), tokenizationUseCase.Callbacks{
		OnSuccess:     func(*tokenizationDomain.TokenizationResult) { successes++ },
		OnError:       func(*tokenizationDomain.TokenizationError) { failures++ },
		OnStateChange: func(s tokenizationDomain.State) { states = append(states, s) },
	})

	result, err := attempt.Wait(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, failures)
	assert.Equal(t, []tokenizationDomain.State{
		tokenizationDomain.StateValidating,
		tokenizationDomain.StateKeyAcquisition,
		tokenizationDomain.StateEncrypting,
		tokenizationDomain.StateSubmitting,
		tokenizationDomain.StateSucceeded,
	}, states)
}

func TestIntegration_Tokenization_EnvelopeRules(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, store := range sessionStores {
		t.Run(store, func(t *testing.T) {
			ctx := setupIntegrationTest(t, store, string(cryptoDomain.AESGCM))
			defer teardownIntegrationTest(t, ctx)

			bg := context.Background()
			doer := gateway.NewHTTPClient()
			sessions := gateway.NewSessionProvider(ctx.gatewayConfig(issuerToken), doer, nil)
			client := gateway.NewTokenizeClient(ctx.gatewayConfig(issuerToken), doer, nil)
			encryptor := tokenizationService.NewEnvelopeEncryptor(
				cryptoService.NewAEADManager(),
				cryptoDomain.AESGCM,
				rand.Reader,
			)
			form := validForm()

			t.Run("session is single use", func(t *testing.T) {
				session, err := sessions.Acquire(bg, shopOrigin)
				require.NoError(t, err)
				assert.Equal(t, shopOrigin, session.Origin)

				envelope, err := encryptor.Encrypt(session, form.Payload())
				require.NoError(t, err)

				result, err := client.Tokenize(bg, envelope)
				require.NoError(t, err)
				assert.NotEmpty(t, result.Token)

				_, err = client.Tokenize(bg, envelope)
				assert.ErrorIs(t, err, tokenizationDomain.ErrProtocol)
			})

			t.Run("envelope bound to another origin is rejected", func(t *testing.T) {
				session, err := sessions.Acquire(bg, shopOrigin)
				require.NoError(t, err)

				forged := *session
				forged.Origin = "https://evil.example"
				envelope, err := encryptor.Encrypt(&forged, form.Payload())
				require.NoError(t, err)

				_, err = client.Tokenize(bg, envelope)
				assert.ErrorIs(t, err, tokenizationDomain.ErrProtocol)
			})

			t.Run("unknown credential cannot acquire a session", func(t *testing.T) {
				intruder := gateway.NewSessionProvider(ctx.gatewayConfig("wrong-token"), doer, nil)

				_, err := intruder.Acquire(bg, shopOrigin)
				assert.ErrorIs(t, err, tokenizationDomain.ErrSessionAcquisition)
			})

			t.Run("expired card rejected by issuer", func(t *testing.T) {
				session, err := sessions.Acquire(bg, shopOrigin)
				require.NoError(t, err)

				expired := form
				expired.ExpiryDate = "01/20"
				envelope, err := encryptor.Encrypt(session, expired.Payload())
				require.NoError(t, err)

				_, err = client.Tokenize(bg, envelope)
				assert.ErrorIs(t, err, tokenizationDomain.ErrProtocol)
			})
		})
	}
}

func TestIntegration_Sessions_RequestValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t, "memory", string(cryptoDomain.AESGCM))
	defer teardownIntegrationTest(t, ctx)

	post := func(path string, body any) int {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req, err := http.NewRequest(http.MethodPost, ctx.server.URL+path, bytes.NewReader(payload))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+issuerToken)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusCreated, post("/v1/sessions", map[string]string{"origin": shopOrigin}))
	assert.Equal(t, http.StatusUnprocessableEntity, post("/v1/sessions", map[string]string{"origin": "shop.example"}))
	assert.Equal(t, http.StatusUnprocessableEntity, post("/v1/tokenize", map[string]string{"kid": "kid_1"}))
	assert.Equal(t, http.StatusNotFound, post("/v1/tokenize", map[string]string{
		"kid":        "kid_1",
		"iv":         "AAAAAAAAAAAAAAAA",
		"wrappedKey": "d3JhcHBlZA==",
		"cipherText": "c2VhbGVk",
		"sessionId":  "unknown-session",
	}))
}
