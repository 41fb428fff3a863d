package usecase

import (
	"context"
	"fmt"
	"strings"
)

// List returns the destination's archives sorted by timestamp ascending,
// creating the destination directory when absent. Listing is deliberately
// not lock-protected.
func List(ctx context.Context, cfg *Config, deps *Dependencies) ([]ArchiveRecord, error) {
	if cfg == nil || deps == nil || deps.FileSystem == nil {
		return nil, fmt.Errorf("dependencies not available: %w", ErrCritical)
	}
	if cfg.Destination == "" {
		return nil, fmt.Errorf("backup destination not configured: %w", ErrUsage)
	}

	if err := deps.FileSystem.CreateDir(ctx, cfg.Destination, 0o750); err != nil {
		return nil, fmt.Errorf("create destination %s: %v: %w", cfg.Destination, err, ErrCritical)
	}
	return ListArchives(ctx, deps, cfg.Destination)
}

// FormatList renders archive names and sizes for terminal output.
func FormatList(records []ArchiveRecord) string {
	if len(records) == 0 {
		return "no archives\n"
	}
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "%-36s %10s\n", rec.Name, FormatBytes(rec.SizeBytes))
	}
	return b.String()
}

// FormatBytes renders a byte count in binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
