package http

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tasklist/internal/adapter/database"
	"tasklist/internal/adapter/database/repository"
	"tasklist/internal/adapter/events/memory"
	redisevents "tasklist/internal/adapter/events/redis"
	"tasklist/internal/adapter/http/handler"
	"tasklist/internal/core/port"
	"tasklist/internal/core/service"
	"tasklist/internal/core/telemetry"
	"tasklist/pkg/config"
)

type Container struct {
	TaskStore   port.TaskStore
	TaskService *service.TaskService
	Events      port.TaskEvents

	TaskHandler   *handler.TaskHandler
	EventsHandler *handler.EventsHandler
	HealthHandler *handler.HealthHandler
}

func NewContainer(db *database.DB, events port.TaskEvents, probe port.Telemetry, metrics *telemetry.AppMetrics, logger *config.LokiLogger, allowedOrigins []string) *Container {
	taskStore := repository.NewTaskRepository(db, probe, repository.WithMetrics(metrics))

	taskSvc := service.NewTaskService(taskStore, probe,
		service.WithEvents(events),
		service.WithMetrics(metrics),
	)

	return &Container{
		TaskStore:   taskStore,
		TaskService: taskSvc,
		Events:      events,

		TaskHandler:   handler.NewTaskHandler(taskSvc, service.NewDispatcher(taskSvc), logger),
		EventsHandler: handler.NewEventsHandler(events, metrics, logger, allowedOrigins),
		HealthHandler: handler.NewHealthHandler(taskStore, db.System),
	}
}

// NewEvents uses redis pub/sub when an address is configured so several
// instances share one feed, and an in-process broker otherwise.
func NewEvents(ctx context.Context, cfg config.RedisConfig, logger *config.LokiLogger) (port.TaskEvents, error) {
	if cfg.Addr == "" {
		return memory.NewBroker(0), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return redisevents.NewBroker(client, redisevents.DefaultChannel, logger.Zap()), nil
}
