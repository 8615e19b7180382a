package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"tasklist/internal/adapter/database"
	"tasklist/internal/adapter/database/engine"
	"tasklist/internal/core/domain"
	"tasklist/pkg/config"
)

func main() {
	steps := flag.Int("steps", 0, "number of migrations to roll back with down, 0 means all")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-steps n] up|down|version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatal(err)
	}

	db, err := engine.Open(cfg.Database)

	if err != nil {
		log.Fatalf("open %s database: %v", cfg.Database.Driver, err)
	}

	defer db.Close()

	if err := run(context.Background(), db, flag.Arg(0), *steps, os.Stdout); err != nil {
		db.Close()
		log.Fatal(err)
	}
}

func run(ctx context.Context, db *database.DB, command string, steps int, out io.Writer) error {
	switch command {
	case "up":
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
	case "down":
		err := db.Migrate(ctx, func(m *migrate.Migrate) error {
			if steps > 0 {
				return m.Steps(-steps)
			}

			return m.Down()
		})

		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return &domain.SchemaInitializationError{Err: err}
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	return printVersion(ctx, db, out)
}

func printVersion(ctx context.Context, db *database.DB, out io.Writer) error {
	return db.Migrate(ctx, func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()

		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintf(out, "%s: no migrations applied\n", db.System)
			return nil
		}

		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s: version %d (dirty: %t)\n", db.System, version, dirty)
		return nil
	})
}
