package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// lifecycle owns one *http.Server from ListenAndServe to graceful shutdown.
type lifecycle struct {
	name   string
	server *http.Server
	logger *slog.Logger
}

func newLifecycle(name, host string, port int, logger *slog.Logger) lifecycle {
	return lifecycle{
		name:   name,
		logger: logger,
		server: &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// serve blocks until the server stops. A graceful shutdown returns nil.
func (l lifecycle) serve() error {
	l.logger.Info("starting "+l.name+" server", slog.String("addr", l.server.Addr))

	if err := l.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s server: %w", l.name, err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx ends.
func (l lifecycle) Shutdown(ctx context.Context) error {
	l.logger.Info("shutting down " + l.name + " server")
	return l.server.Shutdown(ctx)
}
