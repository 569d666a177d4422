package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"webstudio/internal/config"

	"github.com/rs/zerolog"
)

// BackupService periodically snapshots the JSON collections into a
// timestamped directory. Snapshots are taken from the rename-published
// files, so each copy sees a complete collection.
type BackupService struct {
	store  *Store
	config config.BackupConfig
	logger *zerolog.Logger
}

func NewBackupService(store *Store, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		store:  store,
		config: cfg,
		logger: logger,
	}
}

func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	s.logger.Info().Str("schedule", s.config.Schedule).Msg("Backup service started")

	interval := 24 * time.Hour
	if s.config.Schedule != "" {
		if d, err := time.ParseDuration(s.config.Schedule); err == nil {
			interval = d
		} else {
			s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("Failed to parse backup schedule, using default 24h")
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first backup immediately
	if err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("Initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("Scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup copies every collection file present in the data directory
// into a new backup_<timestamp> directory.
func (s *BackupService) PerformBackup() error {
	timestamp := time.Now().Format("20060102_150405")
	backupDir := filepath.Join(s.config.StoragePath, "backup_"+timestamp)

	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	s.logger.Info().Str("path", backupDir).Msg("Performing data backup")

	copied := 0
	for _, name := range []string{servicesFile, partnersFile, ordersFile, contactsFile} {
		src := filepath.Join(s.store.Dir(), name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(backupDir, name)); err != nil {
			return fmt.Errorf("backup %s: %w", name, err)
		}
		copied++
	}

	s.logger.Info().Int("files", copied).Msg("Backup completed successfully")
	return nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	_, err = io.Copy(destination, source)
	return err
}

func (s *BackupService) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	entries, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("dir", entry.Name()).Msg("Deleting old backup")
			os.RemoveAll(filepath.Join(s.config.StoragePath, entry.Name()))
		}
	}
}
