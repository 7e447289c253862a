// Package gateway talks to the trust issuer: it acquires per-session key material and
// exchanges sealed envelopes for payment tokens.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/allisson/cardtoken/internal/tokenization/domain"
)

// maxResponseBytes bounds how much of an issuer response is read.
const maxResponseBytes = 1 << 20

// HTTPDoer is the transport primitive used for issuer calls. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the issuer endpoint settings shared by the gateway clients.
type Config struct {
	// BaseURL is the issuer API root, e.g. "https://issuer.example/v1".
	BaseURL string
	// Token is the bearer credential sent on every call.
	Token string
	// Timeout bounds each call. Zero disables the bound.
	Timeout time.Duration
}

// NewHTTPClient returns the default transport. Timeouts come from the per-call context.
func NewHTTPClient() *http.Client {
	return &http.Client{}
}

type issuerClient struct {
	baseURL string
	token   string
	timeout time.Duration
	doer    HTTPDoer
	logger  *slog.Logger
}

func newIssuerClient(cfg Config, doer HTTPDoer, logger *slog.Logger) issuerClient {
	if doer == nil {
		doer = NewHTTPClient()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return issuerClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		timeout: cfg.Timeout,
		doer:    doer,
		logger:  logger,
	}
}

type issuerResponse struct {
	status int
	body   []byte
}

func (r issuerResponse) ok() bool {
	return r.status >= 200 && r.status < 300
}

// postJSON sends in as a JSON body to path. A call that exceeds the configured timeout
// returns an error wrapping domain.ErrNetwork; other transport failures are returned
// unclassified so each caller can attach its own kind.
func (c issuerClient) postJSON(ctx context.Context, path string, in any) (issuerResponse, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return issuerResponse{}, fmt.Errorf("failed to encode request: %w", err)
	}

	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return issuerResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		return issuerResponse{}, c.transportError(callCtx, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return issuerResponse{}, c.transportError(callCtx, path, err)
	}

	c.logger.Debug("issuer call completed",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return issuerResponse{status: resp.StatusCode, body: data}, nil
}

func (c issuerClient) transportError(ctx context.Context, path string, err error) error {
	if isTimeout(ctx, err) {
		c.logger.Warn("issuer call timed out", slog.String("path", path), slog.Duration("timeout", c.timeout))
		return fmt.Errorf("%w: %s timed out after %s", domain.ErrNetwork, path, c.timeout)
	}
	return fmt.Errorf("%s: %w", path, err)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
