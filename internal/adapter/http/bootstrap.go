package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tasklist/internal/adapter/http/routes"
	"tasklist/internal/core/telemetry"
	"tasklist/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func NewServer(container *Container, metrics *telemetry.AppMetrics, logger *config.LokiLogger, cfg *config.AppConfig) *http.Server {
	router := routes.SetupRouter(routes.HandlersConfig{
		TaskHandler:   container.TaskHandler,
		EventsHandler: container.EventsHandler,
		HealthHandler: container.HealthHandler,
	}, metrics, logger, cfg)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// StartServer serves until ctx is done and then drains in-flight requests.
func StartServer(ctx context.Context, container *Container, metrics *telemetry.AppMetrics, logger *config.LokiLogger, cfg *config.AppConfig) error {
	srv := NewServer(container, metrics, logger, cfg)

	logger.Logger.Info("Server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Logger.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := container.Events.Close(); err != nil {
		logger.Logger.Warn("Failed to close event broker", zap.Error(err))
	}

	return srv.Shutdown(shutdownCtx)
}
