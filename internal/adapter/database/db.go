package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"

	"tasklist/internal/adapter/database/migrations"
	"tasklist/internal/core/domain"
)

// MigrationDriver builds a golang-migrate driver on top of db. The returned
// release func frees what the driver holds and must leave db open.
type MigrationDriver func(ctx context.Context, db *sql.DB) (migratedb.Driver, func() error, error)

type Options struct {
	System      string
	Placeholder squirrel.PlaceholderFormat
	// Prepare runs before the first ping, e.g. to create the schema itself.
	Prepare func(ctx context.Context) error
	Driver  MigrationDriver
}

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
	System       string

	prepare func(ctx context.Context) error
	driver  MigrationDriver
}

func New(sqlDB *sql.DB, opts Options) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(opts.Placeholder)

	return &DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
		System:       opts.System,
		prepare:      opts.Prepare,
		driver:       opts.Driver,
	}
}

// OpenInstrumented opens driverName through otelsql. With logSQL every
// statement is also written to stdout by sqldb-logger, on top of the same
// traced driver.
func OpenInstrumented(driverName, dsn, system, dbName string, logSQL bool) (*sql.DB, error) {
	sqlDB, err := otelsql.Open(driverName, dsn,
		otelsql.WithDBSystem(system),
		otelsql.WithDBName(dbName),
	)

	if err != nil {
		return nil, err
	}

	if logSQL {
		tracedDriver := sqlDB.Driver()

		// the logger opens its own pool, nothing has connected through this one yet
		if err := sqlDB.Close(); err != nil {
			return nil, err
		}

		logger := zerolog.New(os.Stdout).With().
			Timestamp().
			Str("db.system", system).
			Logger()

		sqlDB = sqldblogger.OpenDriver(dsn, tracedDriver, zerologadapter.New(logger))
	}

	otelsql.ReportDBStatsMetrics(sqlDB)

	return sqlDB, nil
}

// EnsureSchema brings the tasks table up to the latest migration. It is safe
// to call on every start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	err := db.Migrate(ctx, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}

		return nil
	})

	if err != nil {
		return &domain.SchemaInitializationError{Err: err}
	}

	return nil
}

// Migrate hands run a migrate instance over the embedded migrations of the
// current dialect.
func (db *DB) Migrate(ctx context.Context, run func(m *migrate.Migrate) error) error {
	if db.prepare != nil {
		if err := db.prepare(ctx); err != nil {
			return fmt.Errorf("prepare %s database: %w", db.System, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s database: %w", db.System, err)
	}

	if db.driver == nil {
		return fmt.Errorf("no migration driver for %s", db.System)
	}

	driver, release, err := db.driver(ctx, db.DB)

	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	defer release()

	source, err := iofs.New(migrations.FS, db.System)

	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.System, driver)

	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	return run(m)
}
