package usecase

import (
	"context"
	"fmt"
	"log/slog"
)

// Restore extracts the named archive into targetDir, creating it if missing.
// It takes the run lock (restores must not race a backup or rotation) but
// never consults the retention keep-set or mutates the catalog.
func Restore(ctx context.Context, cfg *Config, deps *Dependencies, logger *slog.Logger, archiveName, targetDir string) error {
	if logger == nil {
		panic("logger is required")
	}
	if cfg == nil || deps == nil || deps.FileSystem == nil || deps.Archiver == nil {
		return fmt.Errorf("dependencies not available: %w", ErrCritical)
	}
	if archiveName == "" || targetDir == "" {
		return fmt.Errorf("restore requires an archive name and a target directory: %w", ErrUsage)
	}
	if cfg.Destination == "" {
		return fmt.Errorf("backup destination not configured: %w", ErrUsage)
	}
	fs := deps.FileSystem

	release, err := acquireRunLock(ctx, cfg, deps, logger)
	if err != nil {
		return err
	}
	defer release()

	archivePath := fs.Join(cfg.Destination, archiveName)
	if _, err := fs.Stat(ctx, archivePath); err != nil {
		if fs.IsNotExist(err) {
			return fmt.Errorf("archive %s not in destination %s: %w",
				archiveName, cfg.Destination, ErrBackupNotFound)
		}
		return fmt.Errorf("stat archive %s: %v: %w", archivePath, err, ErrCritical)
	}

	if err := fs.CreateDir(ctx, targetDir, 0o750); err != nil {
		return fmt.Errorf("create restore target %s: %v: %w", targetDir, err, ErrCritical)
	}

	logger.Info("Restoring archive", "archive", archiveName, "target", targetDir)
	if err := deps.Archiver.ExtractArchive(ctx, archivePath, targetDir); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("restore canceled: %w", ErrInterrupted)
		}
		return fmt.Errorf("extract %s: %v: %w", archiveName, err, ErrCritical)
	}

	logger.Info("Restore complete", "archive", archiveName, "target", targetDir)
	return nil
}
