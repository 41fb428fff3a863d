package usecase

import (
	"context"
	"fmt"
	"log/slog"
)

// Safety margin for archive creation: the compressed archive plus scratch
// space must fit, so we demand source size + 20% + 1 MiB.
const spaceFixedBufferBytes = 1 << 20

// RequiredSpace returns the destination bytes needed to back up a source of
// the given size. The 20% margin is rounded up.
func RequiredSpace(sourceBytes int64) int64 {
	margin := (sourceBytes*20 + 99) / 100
	return sourceBytes + margin + spaceFixedBufferBytes
}

// checkSpace fails with ErrInsufficientSpace when the destination's free
// bytes cannot hold the required space for the source.
func checkSpace(sourceBytes int64, freeBytes uint64, logger *slog.Logger) error {
	required := RequiredSpace(sourceBytes)
	if freeBytes < uint64(required) {
		return fmt.Errorf(
			"need %d bytes but only %d free at destination: %w",
			required, freeBytes, ErrInsufficientSpace,
		)
	}
	logger.Debug("Space check passed", "required", required, "free", freeBytes)
	return nil
}

// measureSourceSize walks the source tree and sums regular file sizes.
// A missing source maps to ErrSourceNotFound, an unreadable one to
// ErrPermission.
func measureSourceSize(ctx context.Context, deps *Dependencies, sourceDir string) (int64, error) {
	fs := deps.FileSystem

	info, err := fs.Stat(ctx, sourceDir)
	if err != nil {
		if fs.IsNotExist(err) {
			return 0, fmt.Errorf("source directory %s: %w", sourceDir, ErrSourceNotFound)
		}
		if fs.IsPermission(err) {
			return 0, fmt.Errorf("source directory %s: %w", sourceDir, ErrPermission)
		}
		return 0, fmt.Errorf("stat source %s: %v: %w", sourceDir, err, ErrCritical)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("source %s is not a directory: %w", sourceDir, ErrUsage)
	}

	var total int64
	err = fs.Walk(ctx, sourceDir, func(path string, info FileInfo, err error) error {
		if err != nil {
			if fs.IsPermission(err) {
				return fmt.Errorf("read %s: %w", path, ErrPermission)
			}
			return err
		}
		if info != nil && info.IsRegular() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
