package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/omniluck/internal/infra/config"
	"github.com/yanqian/omniluck/internal/infra/jobqueue"
	"github.com/yanqian/omniluck/internal/infra/telemetry"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	jobs    jobqueue.HandlerQueue
	tracing telemetry.Shutdown
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, jobs jobqueue.HandlerQueue, tracing telemetry.Shutdown) *App {
	return &App{
		cfg:     cfg,
		logger:  logger.With("component", "bootstrap"),
		server:  server,
		jobs:    jobs,
		tracing: tracing,
	}
}

// Run starts the HTTP server and blocks until shutdown. Pending history jobs
// are drained and spans flushed before it returns.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutdown signal received")
		runErr = a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	a.stop()
	return runErr
}

func (a *App) stop() {
	if a.jobs != nil {
		a.jobs.Close()
	}
	if a.tracing == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.tracing(ctx); err != nil {
		a.logger.Warn("trace flush failed", "error", err)
	}
}
