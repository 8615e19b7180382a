package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/adapter/database/sqlite"
	"tasklist/pkg/config"
	"tasklist/pkg/test"
)

func TestNew_WithSQLLogging(t *testing.T) {
	db, err := sqlite.New(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   test.MemoryDSN(),
		LogSQL: true,
	})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	require.NoError(t, db.EnsureSchema(ctx))

	_, err = db.ExecContext(ctx, "INSERT INTO tasks (description, deadline) VALUES (?, ?)", "logged", "2099-01-01")
	assert.NoError(t, err)
	assert.Equal(t, 1, test.CountTasks(db))
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}
