package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"webstudio/internal/config"
	"webstudio/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService(t *testing.T) {
	tempDir := t.TempDir()
	storagePath := filepath.Join(tempDir, "backups")

	s, err := Open(filepath.Join(tempDir, "data"))
	require.NoError(t, err)
	require.NoError(t, s.SaveOrders([]models.Order{{ID: "1", Status: models.StatusPending}}))
	require.NoError(t, s.SaveServices([]models.Service{{ID: 1, Name: "Лендинг"}}))

	cfg := config.BackupConfig{
		Enabled:       true,
		StoragePath:   storagePath,
		RetentionDays: 1,
	}
	logger := zerolog.Nop()
	svc := NewBackupService(s, cfg, &logger)

	t.Run("PerformBackup", func(t *testing.T) {
		err := svc.PerformBackup()
		assert.NoError(t, err)

		dirs, err := os.ReadDir(storagePath)
		require.NoError(t, err)
		require.Len(t, dirs, 1)

		// Only the collections that exist on disk are copied.
		files, err := os.ReadDir(filepath.Join(storagePath, dirs[0].Name()))
		require.NoError(t, err)
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Name())
		}
		assert.ElementsMatch(t, []string{ordersFile, servicesFile}, names)
	})

	t.Run("CleanupOldBackups", func(t *testing.T) {
		oldDir := filepath.Join(storagePath, "backup_old")
		require.NoError(t, os.MkdirAll(oldDir, 0o755))

		oldTime := time.Now().AddDate(0, 0, -2)
		require.NoError(t, os.Chtimes(oldDir, oldTime, oldTime))

		svc.CleanupOldBackups()

		dirs, err := os.ReadDir(storagePath)
		require.NoError(t, err)
		require.Len(t, dirs, 1)
		assert.NotEqual(t, "backup_old", dirs[0].Name())
	})
}

func TestBackupService_Disabled(_ *testing.T) {
	logger := zerolog.Nop()
	svc := NewBackupService(nil, config.BackupConfig{Enabled: false}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Start(ctx)
	// Should just return
}
