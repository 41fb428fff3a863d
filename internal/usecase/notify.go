package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// notifyRun appends the run outcome to the simulated mailbox. Notification
// failures are warnings; they never change the run result. Dry-run and
// disabled notifications skip delivery entirely.
func notifyRun(ctx context.Context, cfg *Config, deps *Dependencies, logger *slog.Logger, report *RunReport, runErr error) {
	if cfg == nil || !cfg.NotifyEnabled || cfg.DryRun {
		return
	}
	if deps == nil || deps.Notification == nil || cfg.MailboxPath == "" || cfg.NotifyTo == "" {
		return
	}

	subject, body := composeNotification(cfg, report, runErr)
	err := deps.Notification.Send(context.WithoutCancel(ctx), cfg.MailboxPath, cfg.NotifyTo, subject, body)
	if err != nil {
		logger.Warn("Failed to write notification", "mailbox", cfg.MailboxPath, "error", err)
		return
	}
	logger.Debug("Notification written", "mailbox", cfg.MailboxPath, "subject", subject)
}

func composeNotification(cfg *Config, report *RunReport, runErr error) (string, string) {
	var subject string
	switch {
	case runErr != nil && errors.Is(runErr, ErrInterrupted):
		subject = "arkup: backup aborted"
	case runErr != nil:
		subject = "arkup: backup FAILED"
	case !report.Verified:
		subject = "arkup: backup completed (verification mismatch)"
	default:
		subject = "arkup: backup completed"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Source:      %s\n", cfg.SourceDir)
	fmt.Fprintf(&b, "Destination: %s\n", cfg.Destination)
	if report.ArchiveName != "" {
		fmt.Fprintf(&b, "Archive:     %s (%d bytes)\n", report.ArchiveName, report.ArchiveSize)
	}
	if runErr != nil {
		fmt.Fprintf(&b, "State:       %s\nError:       %v\n", report.State, runErr)
	} else {
		fmt.Fprintf(&b, "Verified:    %t\n", report.Verified)
		fmt.Fprintf(&b, "Retention:   kept %d, deleted %d\n", report.Kept, report.Deleted)
	}
	fmt.Fprintf(&b, "Duration:    %s\n", report.Finished.Sub(report.Started).Round(time.Millisecond))
	return subject, b.String()
}
