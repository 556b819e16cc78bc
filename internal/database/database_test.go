package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	logger := zerolog.Nop()
	db, err := NewDB(path, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDBCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()
	db, err := NewDB(path, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))
}

func TestPingAfterClose(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	logger := zerolog.Nop()

	db1, err := NewDB(path, &logger)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	// Reopening runs CREATE IF NOT EXISTS again.
	db2, err := NewDB(path, &logger)
	require.NoError(t, err)
	defer db2.Close()

	count, err := db2.CountItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
