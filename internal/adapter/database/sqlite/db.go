package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/mattn/go-sqlite3"

	"tasklist/internal/adapter/database"
	"tasklist/pkg/config"
)

func New(cfg config.DatabaseConfig) (*database.DB, error) {
	sqlDB, err := database.OpenInstrumented("sqlite3", cfg.Path, config.DriverSQLite, "tasklist", cfg.LogSQL)

	if err != nil {
		return nil, err
	}

	// one writer at a time, and an in-memory database lives only as long as
	// its connection
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return database.New(sqlDB, database.Options{
		System:      config.DriverSQLite,
		Placeholder: squirrel.Question,
		Driver:      migrationDriver,
	}), nil
}

func migrationDriver(ctx context.Context, db *sql.DB) (migratedb.Driver, func() error, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})

	if err != nil {
		return nil, nil, err
	}

	// closing the sqlite3 driver closes db itself
	return driver, func() error { return nil }, nil
}
