package config

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	RegisterTestingT(t)

	cfg, err := Load("does-not-exist.env")

	Expect(err).To(BeNil())
	Expect(cfg.Port).To(Equal("8080"))
	Expect(cfg.Database.Driver).To(Equal(DriverSQLite))
	Expect(cfg.Database.Path).To(Equal("tasks.db"))
	Expect(cfg.RateLimitRequests).To(Equal(120))
	Expect(cfg.RateLimitWindow).To(Equal(time.Minute))
	Expect(cfg.IsProduction()).To(BeFalse())
}

func TestLoad_FromEnvironment(t *testing.T) {
	RegisterTestingT(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("MYSQL_DATABASE", "tasks_prod")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ALLOWED_ORIGINS", "http://shell.example,https://tasks.example")

	cfg, err := Load()

	Expect(err).To(BeNil())
	Expect(cfg.IsProduction()).To(BeTrue())
	Expect(cfg.Port).To(Equal("9000"))
	Expect(cfg.Database.Driver).To(Equal(DriverMySQL))
	Expect(cfg.Database.MySQLDatabase).To(Equal("tasks_prod"))
	Expect(cfg.Redis.Addr).To(Equal("localhost:6379"))
	Expect(cfg.AllowedOrigins).To(Equal([]string{"http://shell.example", "https://tasks.example"}))
}

func TestValidate(t *testing.T) {
	t.Run("should reject unknown drivers", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Database.Driver = "oracle"

		assert.ErrorContains(t, cfg.Validate(), "oracle")
	})

	t.Run("should require a url for postgres", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Database.Driver = DriverPostgres

		assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

		cfg.Database.URL = "postgres://localhost/tasks"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("should reject a zero rate limit", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.RateLimitRequests = 0

		assert.Error(t, cfg.Validate())

		cfg.RateLimitEnabled = false
		assert.NoError(t, cfg.Validate())
	})
}

func TestDatabaseConfig_MySQLDSN(t *testing.T) {
	cfg := GetDefaultConfig().Database
	cfg.MySQLPassword = "secret"

	withDB := cfg.MySQLDSN(true)
	serverOnly := cfg.MySQLDSN(false)

	assert.Contains(t, withDB, "parseTime=true")
	assert.Contains(t, withDB, "/todolist_db")
	assert.Contains(t, withDB, "tcp(localhost:3306)")
	assert.NotContains(t, serverOnly, "todolist_db")
}

func TestLokiLogger_BuildLokiEntry(t *testing.T) {
	logger, err := NewLokiLogger("tasklist", "http://loki:3100/", false)
	assert.NoError(t, err)

	entry, err := logger.BuildLokiEntry(context.Background(), zapcore.WarnLevel, "slow query", []zap.Field{zap.Int64("task_id", 7)})

	assert.NoError(t, err)
	assert.Equal(t, "http://loki:3100/loki/api/v1/push", logger.lokiURL)
	assert.Len(t, entry.Streams, 1)
	assert.Equal(t, "warn", entry.Streams[0].Stream["level"])
	assert.Contains(t, entry.Streams[0].Values[0][1], `"task_id":7`)
	assert.Contains(t, entry.Streams[0].Values[0][1], `"message":"slow query"`)
}

func TestLokiLogger_BuildLokiEntry_WithTrace(t *testing.T) {
	logger := NewNopLogger()
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	defer span.End()

	entry, err := logger.BuildLokiEntry(ctx, zapcore.InfoLevel, "listed", nil)

	assert.NoError(t, err)
	assert.Contains(t, entry.Streams[0].Values[0][1], `"trace_id":"`+span.SpanContext().TraceID().String()+`"`)
	assert.Contains(t, entry.Streams[0].Values[0][1], `"span_id":"`+span.SpanContext().SpanID().String()+`"`)
}
