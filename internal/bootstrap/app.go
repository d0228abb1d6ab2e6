package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/praju435/ml-based-solar-tracking-system/internal/infra/config"
	"github.com/praju435/ml-based-solar-tracking-system/internal/infra/queue"
)

// App encapsulates the HTTP server and pipeline queue lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	queue  queue.HandlerQueue
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, q queue.HandlerQueue) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, queue: q}
}

// Run starts the HTTP server and blocks until shutdown. The pipeline queue
// is drained before the process exits so in-flight runs complete.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		a.queue.Close()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		a.queue.Close()
		return err
	}
}
