package middleware

import (
	"tasklist/internal/core/telemetry"
	"tasklist/pkg/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// SetupGinMiddleware installs the shared middleware chain. Order matters:
// tracing and the request id exist before anything logs.
func SetupGinMiddleware(router *gin.Engine, serviceName string, metrics *telemetry.AppMetrics, logger *config.LokiLogger, cfg *config.AppConfig) {
	router.Use(gin.Recovery())

	httpsEnforcer := NewHTTPSEnforcer(cfg.EnforceHTTPS, logger.Zap())
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(serviceName))
	router.Use(CurrentMiddleware())
	router.Use(LoggingMiddleware(logger))

	if cfg.RateLimitEnabled {
		rateLimiter := NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, logger.Zap(), metrics)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}
}
