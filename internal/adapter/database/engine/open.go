package engine

import (
	"fmt"

	"tasklist/internal/adapter/database"
	"tasklist/internal/adapter/database/mysql"
	"tasklist/internal/adapter/database/postgres"
	"tasklist/internal/adapter/database/sqlite"
	"tasklist/pkg/config"
)

// Open returns the database for the configured driver. Nothing is dialed
// until the first statement or EnsureSchema.
func Open(cfg config.DatabaseConfig) (*database.DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg)
	case config.DriverMySQL:
		return mysql.New(cfg)
	case config.DriverPostgres:
		return postgres.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
