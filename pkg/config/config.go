package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	Environment string `env:"APP_ENV" env-default:"development"`
	Port        string `env:"PORT" env-default:"8080"`

	Database DatabaseConfig
	Redis    RedisConfig

	RateLimitEnabled  bool          `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" env-default:"120"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"1m"`

	EnforceHTTPS bool `env:"ENFORCE_HTTPS" env-default:"false"`

	// AllowedOrigins may open the task event feed besides the API's own host.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:","`

	LokiURL      string `env:"LOKI_URL"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
	MetricsPort  string `env:"METRICS_PORT" env-default:"9091"`
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" env-default:"sqlite"`
	LogSQL bool   `env:"LOG_SQL" env-default:"false"`

	Path string `env:"DATABASE_PATH" env-default:"tasks.db"`

	MySQLHost     string `env:"MYSQL_HOST" env-default:"localhost"`
	MySQLPort     int    `env:"MYSQL_PORT" env-default:"3306"`
	MySQLUser     string `env:"MYSQL_USER" env-default:"root"`
	MySQLPassword string `env:"MYSQL_PASSWORD"`
	MySQLDatabase string `env:"MYSQL_DATABASE" env-default:"todolist_db"`

	URL string `env:"DATABASE_URL"`

	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" env-default:"10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*AppConfig, error) {
	_ = godotenv.Load(envFiles...)

	cfg := new(AppConfig)

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment: "development",
		Port:        "8080",
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			Path:           "tasks.db",
			MySQLHost:      "localhost",
			MySQLPort:      3306,
			MySQLUser:      "root",
			MySQLDatabase:  "todolist_db",
			ConnectTimeout: 10 * time.Second,
		},
		RateLimitEnabled:  true,
		RateLimitRequests: 120,
		RateLimitWindow:   time.Minute,
		EnforceHTTPS:      false,
		MetricsPort:       "9091",
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverMySQL:
		if c.Database.MySQLDatabase == "" {
			return errors.New("MYSQL_DATABASE is required for the mysql driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	if c.RateLimitEnabled && (c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0) {
		return errors.New("rate limit requests and window must be positive")
	}

	return nil
}

// MySQLDSN builds the DSN for the configured schema. With withDatabase false
// it points at the server only, which is how the schema itself gets created.
func (d DatabaseConfig) MySQLDSN(withDatabase bool) string {
	cfg := mysql.NewConfig()
	cfg.User = d.MySQLUser
	cfg.Passwd = d.MySQLPassword
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", d.MySQLHost, d.MySQLPort)
	cfg.ParseTime = true
	cfg.Timeout = d.ConnectTimeout

	if withDatabase {
		cfg.DBName = d.MySQLDatabase
	}

	return cfg.FormatDSN()
}
