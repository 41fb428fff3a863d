package usecase

import (
	"context"
	"fmt"
	"strings"
)

// StatusReport summarizes configuration and destination contents.
type StatusReport struct {
	Destination  string
	LockPath     string
	KeepDaily    int
	KeepWeekly   int
	KeepMonthly  int
	ArchiveCount int
	TotalBytes   int64
	Oldest       string
	Newest       string
}

// Status inspects the destination catalog without taking the lock.
func Status(ctx context.Context, cfg *Config, deps *Dependencies) (StatusReport, error) {
	if cfg == nil || deps == nil || deps.FileSystem == nil {
		return StatusReport{}, fmt.Errorf("dependencies not available: %w", ErrCritical)
	}

	report := StatusReport{
		Destination: cfg.Destination,
		LockPath:    cfg.LockPath,
		KeepDaily:   cfg.KeepDaily,
		KeepWeekly:  cfg.KeepWeekly,
		KeepMonthly: cfg.KeepMonthly,
	}
	if cfg.Destination == "" {
		return report, nil
	}

	records, err := ListArchives(ctx, deps, cfg.Destination)
	if err != nil {
		// An absent destination means no archives yet, not a failure.
		if deps.FileSystem.IsNotExist(err) {
			return report, nil
		}
		return report, err
	}

	report.ArchiveCount = len(records)
	for _, rec := range records {
		report.TotalBytes += rec.SizeBytes
	}
	if len(records) > 0 {
		report.Oldest = records[0].Name
		report.Newest = records[len(records)-1].Name
	}
	return report, nil
}

// FormatStatus renders the status report for terminal output.
func FormatStatus(report StatusReport) string {
	var b strings.Builder
	b.WriteString("arkup status\n\n")
	fmt.Fprintf(&b, "destination:  %s\n", orUnset(report.Destination))
	fmt.Fprintf(&b, "lock:         %s\n", orUnset(report.LockPath))
	fmt.Fprintf(&b, "retention:    %d daily / %d weekly / %d monthly\n",
		report.KeepDaily, report.KeepWeekly, report.KeepMonthly)
	fmt.Fprintf(&b, "archives:     %d (%s)\n", report.ArchiveCount, FormatBytes(report.TotalBytes))
	if report.ArchiveCount > 0 {
		fmt.Fprintf(&b, "oldest:       %s\n", report.Oldest)
		fmt.Fprintf(&b, "newest:       %s\n", report.Newest)
	}
	return b.String()
}

func orUnset(s string) string {
	if s == "" {
		return "(not configured)"
	}
	return s
}
