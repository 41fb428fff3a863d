// Package notification implements NotificationPort as a simulated mailer.
// Messages are appended to a local mailbox file instead of being delivered
// over the network.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arkup/arkup/internal/usecase"
)

const separator = "----------------------------------------"

//nolint:gochecknoglobals // configurable in tests for deterministic output.
var timeNow = time.Now

// Adapter implements usecase.NotificationPort by appending message blocks
// to a mailbox file.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new notification adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		panic("notification adapter requires logger")
	}
	return &Adapter{logger: logger}
}

// Send appends one message block to the mailbox file, creating the file and
// its parent directory when missing.
func (a *Adapter) Send(ctx context.Context, mailboxPath, to, subject, body string) error {
	_ = ctx
	if strings.TrimSpace(mailboxPath) == "" {
		return fmt.Errorf("mailbox path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(mailboxPath), 0o750); err != nil {
		return fmt.Errorf("create mailbox directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\n", to)
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Date: %s\n", timeNow().Format("2006-01-02 15:04:05"))
	b.WriteString(separator + "\n")

	f, err := os.OpenFile(mailboxPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 - path from config
	if err != nil {
		return fmt.Errorf("open mailbox: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("append to mailbox: %w", err)
	}
	return f.Close()
}

// Verify interface compliance at compile time.
var _ usecase.NotificationPort = (*Adapter)(nil)
