package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vantry/internal/config"
	"vantry/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackup(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "inventory.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	require.NoError(t, db.CreateItem(context.Background(), &models.Item{Name: "Buns", Category: "Buns & Chips"}))
	require.NoError(t, db.Close())

	storage := filepath.Join(dir, "backups")
	svc := NewBackupService(dbPath, config.BackupConfig{Enabled: true, StoragePath: storage}, &logger)

	require.NoError(t, svc.PerformBackup())

	files, err := os.ReadDir(storage)
	require.NoError(t, err)
	require.Len(t, files, 1)

	// The backup is itself a valid database with the same content.
	restored, err := NewDB(filepath.Join(storage, files[0].Name()), &logger)
	require.NoError(t, err)
	defer restored.Close()

	count, err := restored.CountItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCleanupOldBackupsRetentionDisabled(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.Nop()
	svc := NewBackupService(filepath.Join(dir, "x.db"), config.BackupConfig{StoragePath: dir}, &logger)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "backup_old.db"), []byte("x"), 0o644))
	svc.CleanupOldBackups()

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
