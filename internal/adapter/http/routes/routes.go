package routes

import (
	"tasklist/internal/adapter/http/handler"
	"tasklist/internal/adapter/http/middleware"
	"tasklist/internal/core/telemetry"
	"tasklist/pkg/config"

	"github.com/gin-gonic/gin"
)

const serviceName = "tasklist"

type HandlersConfig struct {
	TaskHandler   *handler.TaskHandler
	EventsHandler *handler.EventsHandler
	HealthHandler *handler.HealthHandler
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger, cfg *config.AppConfig) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	middleware.SetupGinMiddleware(router, serviceName, metrics, logger, cfg)
	router.Use(corsMiddleware())

	if handlers.HealthHandler != nil {
		router.GET("/health", handlers.HealthHandler.Health)
	}

	if handlers.TaskHandler != nil {
		setupTaskRoutes(router, handlers.TaskHandler, handlers.EventsHandler)
	}

	return router
}

func setupTaskRoutes(router *gin.Engine, taskHandler *handler.TaskHandler, eventsHandler *handler.EventsHandler) {
	tasks := router.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.PATCH("/:id/completed", taskHandler.SetCompleted)
		tasks.PATCH("/:id/deadline", taskHandler.UpdateDeadline)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.POST("/:id/actions", taskHandler.RowAction)

		if eventsHandler != nil {
			tasks.GET("/events", eventsHandler.Stream)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
