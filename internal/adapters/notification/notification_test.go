package notification

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestAdapter() *Adapter {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSend_WritesMessageBlock(t *testing.T) {
	prev := timeNow
	timeNow = func() time.Time {
		return time.Date(2025, 6, 1, 4, 30, 0, 0, time.UTC)
	}
	defer func() { timeNow = prev }()

	a := newTestAdapter()
	mailbox := filepath.Join(t.TempDir(), "nested", "outbox.mbox")

	err := a.Send(context.Background(), mailbox, "operator@example.com",
		"arkup: backup completed", "Archive: backup-2025-06-01-0430.tar.gz\n")
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(mailbox)
	if err != nil {
		t.Fatal(err)
	}
	want := "To: operator@example.com\n" +
		"Subject: arkup: backup completed\n" +
		"\n" +
		"Archive: backup-2025-06-01-0430.tar.gz\n" +
		"Date: 2025-06-01 04:30:00\n" +
		separator + "\n"
	if string(data) != want {
		t.Errorf("mailbox = %q, want %q", data, want)
	}
}

func TestSend_AppendsToExistingMailbox(t *testing.T) {
	a := newTestAdapter()
	mailbox := filepath.Join(t.TempDir(), "outbox.mbox")

	for _, subject := range []string{"first", "second"} {
		if err := a.Send(context.Background(), mailbox, "x@y", subject, "body"); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(mailbox)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), separator); got != 2 {
		t.Errorf("separator count = %d, want 2", got)
	}
	if !strings.Contains(string(data), "Subject: first") || !strings.Contains(string(data), "Subject: second") {
		t.Errorf("messages missing:\n%s", data)
	}
}

func TestSend_EmptyMailboxPath(t *testing.T) {
	a := newTestAdapter()
	if err := a.Send(context.Background(), "  ", "x@y", "s", "b"); err == nil {
		t.Fatal("expected error for empty mailbox path")
	}
}
