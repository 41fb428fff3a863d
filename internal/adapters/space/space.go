// Package space implements SpacePort via gopsutil disk statistics.
package space

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/arkup/arkup/internal/usecase"
)

// Adapter implements usecase.SpacePort against the mount holding path.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new space adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		panic("space adapter requires logger")
	}
	return &Adapter{logger: logger}
}

// FreeBytes returns the free bytes on the filesystem containing path.
func (a *Adapter) FreeBytes(ctx context.Context, path string) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("disk usage for %s: %w", path, err)
	}
	a.logger.Debug("Destination mount stats",
		"path", path, "free", usage.Free, "total", usage.Total)
	return usage.Free, nil
}

// Verify interface compliance at compile time.
var _ usecase.SpacePort = (*Adapter)(nil)
