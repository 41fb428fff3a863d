package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

//nolint:gochecknoglobals // configurable in tests for deterministic timestamps.
var timeNow = time.Now

// acquireRunLock takes the single-run lock, reclaiming a stale token left by
// a dead process. Contention with a live holder fails immediately with
// ErrLockBusy; there is no wait. The returned release func is safe to call on
// every exit path.
func acquireRunLock(ctx context.Context, cfg *Config, deps *Dependencies, logger *slog.Logger) (func(), error) {
	if deps.Lock == nil || deps.Process == nil {
		return nil, fmt.Errorf("lock adapter not available: %w", ErrCritical)
	}

	info := LockInfo{
		PID:         deps.Process.GetPID(),
		StartTime:   timeNow(),
		SourceDir:   cfg.SourceDir,
		Destination: cfg.Destination,
	}

	err := deps.Lock.TryAcquire(ctx, cfg.LockPath, info)
	if err == nil {
		return releaseFunc(ctx, cfg, deps, logger), nil
	}
	if !errors.Is(err, ErrLockBusy) {
		return nil, fmt.Errorf("acquire lock %s: %v: %w", cfg.LockPath, err, ErrCritical)
	}

	stale, holder, serr := deps.Lock.IsStale(ctx, cfg.LockPath)
	if serr != nil {
		return nil, fmt.Errorf("inspect lock %s: %v: %w", cfg.LockPath, serr, ErrCritical)
	}
	if !stale {
		return nil, fmt.Errorf(
			"another run is in progress (pid %d since %s): %w",
			holder.PID, holder.StartTime.Format(time.RFC3339), ErrLockBusy,
		)
	}

	logger.Warn("Reclaiming stale lock from dead process", "path", cfg.LockPath, "pid", holder.PID)
	if err := deps.Lock.Reclaim(ctx, cfg.LockPath); err != nil {
		return nil, fmt.Errorf("reclaim stale lock %s: %v: %w", cfg.LockPath, err, ErrCritical)
	}
	if err := deps.Lock.TryAcquire(ctx, cfg.LockPath, info); err != nil {
		if errors.Is(err, ErrLockBusy) {
			return nil, fmt.Errorf("lock re-taken during reclaim: %w", ErrLockBusy)
		}
		return nil, fmt.Errorf("acquire lock %s: %v: %w", cfg.LockPath, err, ErrCritical)
	}
	return releaseFunc(ctx, cfg, deps, logger), nil
}

func releaseFunc(ctx context.Context, cfg *Config, deps *Dependencies, logger *slog.Logger) func() {
	return func() {
		// Release must run even when ctx was canceled by a signal.
		if err := deps.Lock.Release(context.WithoutCancel(ctx), cfg.LockPath); err != nil {
			logger.Warn("Failed to release lock", "path", cfg.LockPath, "error", err)
		}
	}
}
