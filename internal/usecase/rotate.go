package usecase

import (
	"context"
	"fmt"
	"log/slog"
)

// Rotate deletes archives absent from the keep-set together with their
// sidecars. An empty catalog is a no-op. With dryRun set, deletions are
// logged but not performed. Returns the kept and deleted archive counts.
func Rotate(ctx context.Context, cfg *Config, deps *Dependencies, logger *slog.Logger, dryRun bool) (int, int, error) {
	records, err := ListArchives(ctx, deps, cfg.Destination)
	if err != nil {
		return 0, 0, err
	}
	if len(records) == 0 {
		logger.Debug("Rotation skipped, destination holds no archives")
		return 0, 0, nil
	}

	keep := PlanRetention(records, cfg.Policy())

	deleted := 0
	for _, rec := range records {
		if _, ok := keep[rec.Name]; ok {
			continue
		}
		if dryRun {
			logger.Info("Would delete archive", "archive", rec.Name)
			deleted++
			continue
		}
		if err := deleteArchivePair(ctx, deps, rec, logger); err != nil {
			return len(records) - deleted, deleted, err
		}
		deleted++
	}

	kept := len(records) - deleted
	logger.Info("Rotation complete", "kept", kept, "deleted", deleted, "dry_run", dryRun)
	return kept, deleted, nil
}

// deleteArchivePair removes an archive and its sidecar in one operation so
// no orphaned sidecar survives. A missing sidecar is not an error.
func deleteArchivePair(ctx context.Context, deps *Dependencies, rec ArchiveRecord, logger *slog.Logger) error {
	fs := deps.FileSystem

	if err := fs.Remove(ctx, rec.Path); err != nil && !fs.IsNotExist(err) {
		return fmt.Errorf("delete archive %s: %v: %w", rec.Path, err, ErrCritical)
	}
	logger.Info("Deleted archive", "archive", rec.Name)

	if err := fs.Remove(ctx, rec.SidecarPath); err != nil && !fs.IsNotExist(err) {
		return fmt.Errorf("delete sidecar %s: %v: %w", rec.SidecarPath, err, ErrCritical)
	}
	return nil
}
