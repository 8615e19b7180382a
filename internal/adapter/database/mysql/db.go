package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/go-sql-driver/mysql"

	"tasklist/internal/adapter/database"
	"tasklist/pkg/config"
)

func New(cfg config.DatabaseConfig) (*database.DB, error) {
	sqlDB, err := database.OpenInstrumented("mysql", cfg.MySQLDSN(true), config.DriverMySQL, cfg.MySQLDatabase, cfg.LogSQL)

	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return database.New(sqlDB, database.Options{
		System:      config.DriverMySQL,
		Placeholder: squirrel.Question,
		Prepare:     createDatabase(cfg),
		Driver:      migrationDriver(cfg.MySQLDatabase),
	}), nil
}

// createDatabase connects at server level and creates the configured schema
// when it is missing.
func createDatabase(cfg config.DatabaseConfig) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		server, err := sql.Open("mysql", cfg.MySQLDSN(false))

		if err != nil {
			return err
		}

		defer server.Close()

		name := strings.ReplaceAll(cfg.MySQLDatabase, "`", "``")
		_, err = server.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name))

		return err
	}
}

func migrationDriver(dbName string) database.MigrationDriver {
	return func(ctx context.Context, db *sql.DB) (migratedb.Driver, func() error, error) {
		conn, err := db.Conn(ctx)

		if err != nil {
			return nil, nil, err
		}

		driver, err := migratemysql.WithConnection(ctx, conn, &migratemysql.Config{DatabaseName: dbName})

		if err != nil {
			conn.Close()
			return nil, nil, err
		}

		return driver, conn.Close, nil
	}
}
