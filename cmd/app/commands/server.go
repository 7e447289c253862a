package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/cardtoken/internal/app"
	"github.com/allisson/cardtoken/internal/config"
)

// shutdownTimeout bounds graceful shutdown of the servers.
const shutdownTimeout = 10 * time.Second

// Runnable is a server the run loop can start and stop.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer starts the issuer API and metrics servers with graceful shutdown support.
// Blocks until receiving SIGINT/SIGTERM or encountering a fatal error.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	servers := []Runnable{server}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	return runServers(ctx, logger, servers...)
}

// runServers starts every server and stops all of them once ctx is done or any server
// fails. The first start error is returned.
func runServers(ctx context.Context, logger *slog.Logger, servers ...Runnable) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range servers {
		g.Go(func() error {
			return s.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}
