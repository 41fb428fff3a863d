package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Backup runs one full backup invocation:
//
//	lock -> space check -> build -> checksum -> verify -> rotate -> notify
//
// The lock is released on every exit path. A verification mismatch is a
// warning carried in the report, never a run failure. The returned report is
// non-nil even on error so callers can inspect the terminal state.
func Backup(ctx context.Context, cfg *Config, deps *Dependencies, logger *slog.Logger) (*RunReport, error) {
	if logger == nil {
		panic("logger is required")
	}

	report := &RunReport{State: StateIdle, DryRun: cfg.DryRun, Started: timeNow()}
	err := runBackup(ctx, cfg, deps, logger, report)
	report.Finished = timeNow()

	if err != nil {
		if errors.Is(err, ErrInterrupted) {
			report.State = StateAborted
		} else {
			report.State = StateFailed
		}
		logger.Error("Backup failed", "state", report.State, "error", err)
	}
	notifyRun(ctx, cfg, deps, logger, report, err)
	return report, err
}

func runBackup(ctx context.Context, cfg *Config, deps *Dependencies, logger *slog.Logger, report *RunReport) error {
	if err := validateBackupDeps(cfg, deps); err != nil {
		return err
	}
	fs := deps.FileSystem

	logger.Info("Starting backup",
		"source", cfg.SourceDir, "destination", cfg.Destination, "dry_run", cfg.DryRun)

	if err := fs.CreateDir(ctx, cfg.Destination, 0o750); err != nil {
		return fmt.Errorf("create destination %s: %v: %w", cfg.Destination, err, ErrCritical)
	}

	// Dry-run never touches lock-protected state, so the token stays unwritten.
	if !cfg.DryRun {
		release, err := acquireRunLock(ctx, cfg, deps, logger)
		if err != nil {
			return err
		}
		defer release()
	}
	report.State = StateLocked

	sourceBytes, err := measureSourceSize(ctx, deps, cfg.SourceDir)
	if err != nil {
		return err
	}
	free, err := deps.Space.FreeBytes(ctx, cfg.Destination)
	if err != nil {
		return fmt.Errorf("query free space at %s: %v: %w", cfg.Destination, err, ErrCritical)
	}
	if err := checkSpace(sourceBytes, free, logger); err != nil {
		return err
	}
	report.State = StateSpaceOK

	name := ArchiveName(timeNow())
	report.ArchiveName = name
	report.ArchivePath = fs.Join(cfg.Destination, name)
	report.SidecarPath = fs.Join(cfg.Destination, SidecarName(name))

	if cfg.DryRun {
		return dryRunRemainder(ctx, cfg, deps, logger, report, sourceBytes)
	}

	if err := buildArchive(ctx, cfg, deps, logger, report); err != nil {
		return err
	}
	report.State = StateBuilt

	digest, err := generateSidecar(ctx, deps, report.ArchivePath, report.SidecarPath)
	if err != nil {
		return err
	}
	report.State = StateChecksum
	logger.Info("Checksum written", "sidecar", fs.Base(report.SidecarPath), "digest", digest)

	match, verr := verifyArchive(ctx, deps, report.ArchivePath, report.SidecarPath)
	if verr != nil {
		logger.Warn("Verification could not complete", "error", verr)
	} else if !match {
		logger.Warn("Verification mismatch, archive digest differs from sidecar",
			"archive", report.ArchiveName)
	}
	report.Verified = verr == nil && match
	report.State = StateVerified

	kept, deleted, err := Rotate(ctx, cfg, deps, logger, false)
	if err != nil {
		return err
	}
	report.Kept, report.Deleted = kept, deleted
	report.State = StateRotated

	report.State = StateDone
	logger.Info("Backup complete",
		"archive", report.ArchiveName, "size", report.ArchiveSize,
		"verified", report.Verified, "kept", report.Kept, "deleted", report.Deleted)
	return nil
}

// buildArchive writes the archive to a scratch path inside the destination
// and atomically renames it into place, so readers never observe a partial
// archive. The scratch file is removed on every failure path, including
// cancellation by signal.
func buildArchive(ctx context.Context, cfg *Config, deps *Dependencies, logger *slog.Logger, report *RunReport) error {
	fs := deps.FileSystem
	scratch := fs.Join(cfg.Destination, "."+report.ArchiveName+".partial")

	cleanup := func() {
		if err := fs.Remove(context.WithoutCancel(ctx), scratch); err != nil && !fs.IsNotExist(err) {
			logger.Warn("Failed to remove scratch archive", "path", scratch, "error", err)
		}
	}

	logger.Info("Building archive", "source", cfg.SourceDir, "archive", report.ArchiveName)
	if err := deps.Archiver.BuildArchive(ctx, cfg.SourceDir, scratch); err != nil {
		cleanup()
		if ctx.Err() != nil {
			return fmt.Errorf("archive build canceled: %w", ErrInterrupted)
		}
		return fmt.Errorf("build archive from %s: %v: %w", cfg.SourceDir, err, ErrArchiveBuild)
	}
	if ctx.Err() != nil {
		cleanup()
		return fmt.Errorf("archive build canceled: %w", ErrInterrupted)
	}

	if err := fs.Move(ctx, scratch, report.ArchivePath); err != nil {
		cleanup()
		return fmt.Errorf("move archive into destination: %v: %w", err, ErrArchiveBuild)
	}

	if info, err := fs.Stat(ctx, report.ArchivePath); err == nil {
		report.ArchiveSize = info.Size()
	}
	return nil
}

// dryRunRemainder reports what a real run would do past the space check
// without creating, deleting or modifying anything.
func dryRunRemainder(ctx context.Context, cfg *Config, deps *Dependencies, logger *slog.Logger, report *RunReport, sourceBytes int64) error {
	logger.Info("Dry-run: would build archive",
		"archive", report.ArchiveName, "source_bytes", sourceBytes,
		"required_bytes", RequiredSpace(sourceBytes))
	logger.Info("Dry-run: would write and verify sidecar", "sidecar", SidecarName(report.ArchiveName))

	kept, deleted, err := Rotate(ctx, cfg, deps, logger, true)
	if err != nil {
		return err
	}
	report.Kept, report.Deleted = kept, deleted
	report.State = StateDone
	logger.Info("Dry-run complete", "would_keep", kept, "would_delete", deleted)
	return nil
}

func validateBackupDeps(cfg *Config, deps *Dependencies) error {
	if cfg == nil || deps == nil {
		return fmt.Errorf("configuration or dependencies missing: %w", ErrCritical)
	}
	if cfg.SourceDir == "" {
		return fmt.Errorf("source directory is required: %w", ErrUsage)
	}
	if cfg.Destination == "" {
		return fmt.Errorf("backup destination not configured: %w", ErrUsage)
	}
	if deps.FileSystem == nil || deps.Archiver == nil || deps.Space == nil {
		return fmt.Errorf("adapters not available: %w", ErrCritical)
	}
	return nil
}
