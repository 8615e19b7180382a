package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tasklist/internal/adapter/database"
	"tasklist/pkg/config"
)

func New(cfg config.DatabaseConfig) (*database.DB, error) {
	connConfig, err := pgx.ParseConfig(cfg.URL)

	if err != nil {
		return nil, err
	}

	sqlDB, err := database.OpenInstrumented("pgx", cfg.URL, config.DriverPostgres, connConfig.Database, cfg.LogSQL)

	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return database.New(sqlDB, database.Options{
		System:      config.DriverPostgres,
		Placeholder: squirrel.Dollar,
		Driver:      migrationDriver,
	}), nil
}

func migrationDriver(ctx context.Context, db *sql.DB) (migratedb.Driver, func() error, error) {
	conn, err := db.Conn(ctx)

	if err != nil {
		return nil, nil, err
	}

	driver, err := migratepg.WithConnection(ctx, conn, &migratepg.Config{})

	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	return driver, conn.Close, nil
}
