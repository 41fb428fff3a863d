package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock(t *testing.T, stamp string) func() {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", stamp)
	if err != nil {
		t.Fatal(err)
	}
	prev := timeNow
	timeNow = func() time.Time { return ts }
	return func() { timeNow = prev }
}

func newBackupConfig(t *testing.T) *Config {
	t.Helper()
	source := t.TempDir()
	if err := os.WriteFile(filepath.Join(source, "data.txt"), []byte("payload"), 0o600); err != nil {
		t.Fatal(err)
	}
	dest := t.TempDir()
	return &Config{
		SourceDir:   source,
		Destination: dest,
		LockPath:    filepath.Join(dest, ".arkup.lock"),
		KeepDaily:   DefaultKeepDaily,
		KeepWeekly:  DefaultKeepWeekly,
		KeepMonthly: DefaultKeepMonthly,
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestBackup_SuccessCreatesVerifiedArchiveAndSidecar(t *testing.T) {
	defer fixedClock(t, "2025-06-01 04:30")()
	cfg := newBackupConfig(t)
	deps, _, lock, _, _ := newTestDeps()

	report, err := Backup(context.Background(), cfg, deps, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if report.State != StateDone {
		t.Fatalf("state = %s, want %s", report.State, StateDone)
	}
	if report.ArchiveName != "backup-2025-06-01-0430.tar.gz" {
		t.Fatalf("archive name = %s", report.ArchiveName)
	}
	if !report.Verified {
		t.Fatal("expected verified archive")
	}
	if lock.releases != 1 {
		t.Fatalf("lock released %d times, want 1", lock.releases)
	}

	archive, err := os.ReadFile(report.ArchivePath)
	if err != nil {
		t.Fatalf("archive missing: %v", err)
	}
	sidecar, err := os.ReadFile(report.SidecarPath)
	if err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}

	sum := sha256.Sum256(archive)
	wantLine := hex.EncodeToString(sum[:]) + "  " + report.ArchiveName + "\n"
	if string(sidecar) != wantLine {
		t.Fatalf("sidecar = %q, want %q", sidecar, wantLine)
	}

	// No scratch file left behind.
	for _, name := range listDir(t, cfg.Destination) {
		if strings.HasSuffix(name, ".partial") {
			t.Errorf("scratch file %s left in destination", name)
		}
	}
}

func TestBackup_InsufficientSpaceCreatesNothing(t *testing.T) {
	cfg := newBackupConfig(t)
	deps, archiver, lock, space, _ := newTestDeps()
	space.Free = 10 // far below the 1 MiB fixed buffer

	report, err := Backup(context.Background(), cfg, deps, discardLogger())
	if !errors.Is(err, ErrInsufficientSpace) {
		t.Fatalf("expected ErrInsufficientSpace, got %v", err)
	}
	if report.State != StateFailed {
		t.Fatalf("state = %s, want %s", report.State, StateFailed)
	}
	if len(archiver.builds) != 0 {
		t.Fatal("archive build must not be attempted")
	}
	if got := listDir(t, cfg.Destination); len(got) != 0 {
		t.Fatalf("destination not empty: %v", got)
	}
	if lock.releases != 1 {
		t.Fatalf("lock released %d times, want 1", lock.releases)
	}
}

func TestBackup_MissingSourceFails(t *testing.T) {
	cfg := newBackupConfig(t)
	cfg.SourceDir = filepath.Join(cfg.SourceDir, "nope")
	deps, _, _, _, _ := newTestDeps()

	_, err := Backup(context.Background(), cfg, deps, discardLogger())
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestBackup_LockContentionFailsFast(t *testing.T) {
	cfg := newBackupConfig(t)
	deps, archiver, lock, _, _ := newTestDeps()
	lock.TryAcquireFunc = func(ctx context.Context, path string, info LockInfo) error {
		return ErrLockBusy
	}
	lock.IsStaleFunc = func(ctx context.Context, path string) (bool, LockInfo, error) {
		return false, LockInfo{PID: 4242, StartTime: time.Now()}, nil
	}

	_, err := Backup(context.Background(), cfg, deps, discardLogger())
	if !errors.Is(err, ErrLockBusy) {
		t.Fatalf("expected ErrLockBusy, got %v", err)
	}
	if len(archiver.builds) != 0 {
		t.Fatal("no artifact may be touched under contention")
	}
	if got := listDir(t, cfg.Destination); len(got) != 0 {
		t.Fatalf("destination not empty: %v", got)
	}
}

func TestBackup_StaleLockReclaimedAndRunProceeds(t *testing.T) {
	cfg := newBackupConfig(t)
	deps, _, lock, _, _ := newTestDeps()

	busyOnce := true
	lock.TryAcquireFunc = func(ctx context.Context, path string, info LockInfo) error {
		if busyOnce {
			busyOnce = false
			return ErrLockBusy
		}
		return nil
	}
	lock.IsStaleFunc = func(ctx context.Context, path string) (bool, LockInfo, error) {
		return true, LockInfo{PID: 999999}, nil
	}

	report, err := Backup(context.Background(), cfg, deps, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if report.State != StateDone {
		t.Fatalf("state = %s, want %s", report.State, StateDone)
	}
	if lock.reclaims != 1 {
		t.Fatalf("reclaims = %d, want 1", lock.reclaims)
	}
}

func TestBackup_VerificationMismatchIsNonFatal(t *testing.T) {
	cfg := newBackupConfig(t)
	deps, _, _, _, notify := newTestDeps()
	cfg.NotifyEnabled = true
	cfg.NotifyTo = "operator@example.com"
	cfg.MailboxPath = filepath.Join(t.TempDir(), "outbox.mbox")

	calls := 0
	deps.Digest = &fakeDigest{ComputeFunc: func(ctx context.Context, path string) (string, error) {
		calls++
		return fmt.Sprintf("digest-%d", calls), nil
	}}

	report, err := Backup(context.Background(), cfg, deps, discardLogger())
	if err != nil {
		t.Fatalf("mismatch must not fail the run: %v", err)
	}
	if report.Verified {
		t.Fatal("expected verification mismatch")
	}
	if report.State != StateDone {
		t.Fatalf("state = %s, want %s", report.State, StateDone)
	}
	if _, err := os.Stat(report.ArchivePath); err != nil {
		t.Fatalf("archive must be kept on mismatch: %v", err)
	}
	if _, err := os.Stat(report.SidecarPath); err != nil {
		t.Fatalf("sidecar must be kept on mismatch: %v", err)
	}
	if len(notify.sent) != 1 || !strings.Contains(notify.sent[0].Subject, "mismatch") {
		t.Fatalf("expected mismatch notification, got %+v", notify.sent)
	}
}

func TestBackup_ChecksumToolUnavailableIsFatal(t *testing.T) {
	cfg := newBackupConfig(t)
	deps, _, lock, _, _ := newTestDeps()
	deps.Digest = nil

	report, err := Backup(context.Background(), cfg, deps, discardLogger())
	if !errors.Is(err, ErrChecksumTool) {
		t.Fatalf("expected ErrChecksumTool, got %v", err)
	}
	if report.State != StateFailed {
		t.Fatalf("state = %s, want %s", report.State, StateFailed)
	}
	if lock.releases != 1 {
		t.Fatalf("lock released %d times, want 1", lock.releases)
	}
}

func TestBackup_BuildFailureCleansScratchAndKeepsDestination(t *testing.T) {
	cfg := newBackupConfig(t)
	deps, archiver, _, _, _ := newTestDeps()
	archiver.BuildFunc = func(ctx context.Context, sourceDir, outPath string) error {
		// Simulate a partial write before the failure.
		if err := os.WriteFile(outPath, []byte("partial"), 0o600); err != nil {
			return err
		}
		return errors.New("tar exploded")
	}

	_, err := Backup(context.Background(), cfg, deps, discardLogger())
	if !errors.Is(err, ErrArchiveBuild) {
		t.Fatalf("expected ErrArchiveBuild, got %v", err)
	}
	if got := listDir(t, cfg.Destination); len(got) != 0 {
		t.Fatalf("destination must be untouched, got %v", got)
	}
}

func TestBackup_CanceledBuildAborts(t *testing.T) {
	cfg := newBackupConfig(t)
	deps, archiver, lock, _, _ := newTestDeps()

	ctx, cancel := context.WithCancel(context.Background())
	archiver.BuildFunc = func(ctx context.Context, sourceDir, outPath string) error {
		if err := os.WriteFile(outPath, []byte("partial"), 0o600); err != nil {
			return err
		}
		cancel()
		return ctx.Err()
	}

	report, err := Backup(ctx, cfg, deps, discardLogger())
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if report.State != StateAborted {
		t.Fatalf("state = %s, want %s", report.State, StateAborted)
	}
	if got := listDir(t, cfg.Destination); len(got) != 0 {
		t.Fatalf("scratch must be cleaned on abort, got %v", got)
	}
	if lock.releases != 1 {
		t.Fatalf("lock must be released on abort, releases = %d", lock.releases)
	}
}

func TestBackup_DryRunTouchesNothing(t *testing.T) {
	defer fixedClock(t, "2025-06-02 04:30")()
	cfg := newBackupConfig(t)
	cfg.DryRun = true
	deps, archiver, lock, _, notify := newTestDeps()
	cfg.NotifyEnabled = true
	cfg.NotifyTo = "operator@example.com"
	cfg.MailboxPath = filepath.Join(t.TempDir(), "outbox.mbox")

	// Pre-existing archives beyond the daily policy would normally rotate.
	old := filepath.Join(cfg.Destination, "backup-2020-01-01-0100.tar.gz")
	if err := os.WriteFile(old, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	before := listDir(t, cfg.Destination)

	report, err := Backup(context.Background(), cfg, deps, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if report.State != StateDone {
		t.Fatalf("state = %s, want %s", report.State, StateDone)
	}
	if len(archiver.builds) != 0 {
		t.Fatal("dry-run must not build")
	}
	if lock.releases != 0 || len(lock.held) != 0 {
		t.Fatal("dry-run must not touch the lock")
	}
	if len(notify.sent) != 0 {
		t.Fatal("dry-run must not notify")
	}

	after := listDir(t, cfg.Destination)
	if len(before) != len(after) {
		t.Fatalf("destination changed: %v -> %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("destination changed: %v -> %v", before, after)
		}
	}
}

func TestBackup_RotationDeletesBeyondPolicy(t *testing.T) {
	defer fixedClock(t, "2025-01-03 05:00")()
	cfg := newBackupConfig(t)
	cfg.KeepDaily = 2
	cfg.KeepWeekly = 1
	cfg.KeepMonthly = 1
	deps, _, _, _, _ := newTestDeps()

	// Existing archives on Jan 1 and Jan 2; the run adds Jan 3.
	for _, name := range []string{
		"backup-2025-01-01-0500.tar.gz",
		"backup-2025-01-02-0500.tar.gz",
	} {
		if err := os.WriteFile(filepath.Join(cfg.Destination, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		sidecar := filepath.Join(cfg.Destination, name+SidecarExt)
		if err := os.WriteFile(sidecar, []byte("digest  "+name+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	report, err := Backup(context.Background(), cfg, deps, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if report.Deleted != 1 || report.Kept != 2 {
		t.Fatalf("kept=%d deleted=%d, want kept=2 deleted=1", report.Kept, report.Deleted)
	}

	names := listDir(t, cfg.Destination)
	for _, name := range names {
		if strings.Contains(name, "2025-01-01") {
			t.Errorf("oldest archive should be rotated out, found %s", name)
		}
	}
	// The survivor pair and the new pair remain: 2 archives + 2 sidecars.
	if len(names) != 4 {
		t.Fatalf("destination holds %v, want 4 entries", names)
	}
}
