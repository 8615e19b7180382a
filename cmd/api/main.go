package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"tasklist/internal/adapter/database/engine"
	httpadapter "tasklist/internal/adapter/http"
	"tasklist/internal/adapter/telemetry"
	"tasklist/internal/core/domain"
	. "tasklist/pkg/config"
	. "tasklist/pkg/tracing"
)

const serviceName = "tasklist"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := Load()

	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		cfg.Environment = "production"
	}

	logger, err := NewLokiLogger(serviceName, cfg.LokiURL, !cfg.IsProduction())

	if err != nil {
		log.Fatal("Failed to initialize Loki logger:", err)
	}

	defer logger.Sync()

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, logger)

	if err != nil {
		logger.Logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Warn("Failed to shut down telemetry", zap.Error(err))
		}
	}()

	tel.AppMetrics.StartSystemMetrics(ctx)

	db, err := engine.Open(cfg.Database)

	if err != nil {
		logger.Logger.Fatal("Failed to open database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	defer db.Close()

	events, err := httpadapter.NewEvents(ctx, cfg.Redis, logger)

	if err != nil {
		logger.Logger.Fatal("Failed to initialize task events", zap.Error(err))
	}

	container := httpadapter.NewContainer(db, events, tel.NewTelemetryProbe(logger), tel.AppMetrics, logger, cfg.AllowedOrigins)

	// the shell must not serve anything before the tasks table exists
	err = SpanWrapper(ctx, "tasklist.ensure_schema", []attribute.KeyValue{
		attribute.String("db.system", db.System),
	}, container.TaskStore.EnsureSchema)

	if err != nil {
		var schemaErr *domain.SchemaInitializationError

		if errors.As(err, &schemaErr) {
			logger.ErrorWithTrace(ctx, "Cannot initialize the tasks schema", zap.Error(schemaErr.Err))
		}

		logger.Logger.Fatal("Startup aborted", zap.Error(err))
	}

	if err := httpadapter.StartServer(ctx, container, tel.AppMetrics, logger, cfg); err != nil {
		logger.Logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Logger.Info("Shutting down gracefully...")
}
