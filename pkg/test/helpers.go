package test

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"tasklist/internal/adapter/database"
	"tasklist/internal/adapter/database/sqlite"
	"tasklist/pkg/config"
)

// MemoryDSN names a fresh shared in-memory sqlite database.
func MemoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
}

// InitTestDB returns an isolated sqlite database with the schema applied.
func InitTestDB() *database.DB {
	db, err := sqlite.New(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   MemoryDSN(),
	})

	if err != nil {
		log.Fatal(err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		log.Fatal(err)
	}

	return db
}

// CountTasks reads the row count directly, bypassing the store.
func CountTasks(db *database.DB) int {
	var count int

	if err := db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		log.Fatal(err)
	}

	return count
}
