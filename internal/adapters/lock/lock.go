// Package lock implements LockPort with a filesystem lock token.
package lock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/arkup/arkup/internal/usecase"
)

const (
	osLinux  = "linux"
	osDarwin = "darwin"
)

// Adapter implements usecase.LockPort. The token is a single JSON file
// created with O_EXCL; the file's presence is the lock. Staleness is decided
// by probing the recorded process, with PID-reuse detection via process
// start identity where the platform supports it.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new lock adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		panic("lock adapter requires logger")
	}
	return &Adapter{logger: logger}
}

// TryAcquire creates the token file exclusively. An existing token fails
// with ErrLockBusy immediately; there is no wait.
func (a *Adapter) TryAcquire(ctx context.Context, path string, info usecase.LockInfo) error {
	_ = ctx
	fillLockInfo(&info)

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal lock info: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) // #nosec G304 - path from config
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("lock token present at %s: %w", path, usecase.ErrLockBusy)
		}
		return fmt.Errorf("create lock token: %w", err)
	}
	if _, werr := f.Write(data); werr != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write lock token: %w", werr)
	}
	return f.Close()
}

// IsStale reports whether the current token's recorded process is no longer
// alive. A token that cannot be parsed is treated as stale.
func (a *Adapter) IsStale(ctx context.Context, path string) (bool, usecase.LockInfo, error) {
	_ = ctx
	info, err := readLockInfo(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, usecase.LockInfo{}, err
		}
		a.logger.Warn("Unreadable lock token treated as stale", "path", path, "error", err)
		return true, usecase.LockInfo{}, nil
	}

	if info.Hostname != "" {
		if hostname, herr := os.Hostname(); herr == nil && hostname != info.Hostname {
			// Liveness cannot be probed across hosts; assume the holder lives.
			return false, info, nil
		}
	}

	if info.ProcessStartID != "" {
		if id, ok := getProcessStartID(info.PID); ok {
			return id != info.ProcessStartID, info, nil
		}
	}
	if info.ProcessStartTicks != 0 {
		if ticks, ok := getProcessStartTicks(info.PID); ok {
			return ticks != info.ProcessStartTicks, info, nil
		}
	}
	return !a.isProcessRunning(info.PID), info, nil
}

// Reclaim removes a stale token.
func (a *Adapter) Reclaim(ctx context.Context, path string) error {
	_ = ctx
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Release removes the token; safe to call when no token exists.
func (a *Adapter) Release(ctx context.Context, path string) error {
	_ = ctx
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func fillLockInfo(info *usecase.LockInfo) {
	if info.PID == 0 {
		info.PID = os.Getpid()
	}
	if info.StartTime.IsZero() {
		info.StartTime = time.Now()
	}
	if info.Hostname == "" {
		hostname, _ := os.Hostname()
		info.Hostname = hostname
	}
	if info.ProcessStartTicks == 0 {
		if ticks, ok := getProcessStartTicks(info.PID); ok {
			info.ProcessStartTicks = ticks
		}
	}
	if info.ProcessStartID == "" {
		if id, ok := getProcessStartID(info.PID); ok {
			info.ProcessStartID = id
		}
	}
}

func readLockInfo(path string) (usecase.LockInfo, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is controlled by the adapter
	if err != nil {
		return usecase.LockInfo{}, err
	}

	var info usecase.LockInfo
	if err := json.Unmarshal(data, &info); err == nil {
		return info, nil
	}

	// Fallback: a bare PID written by hand or by an older version.
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return usecase.LockInfo{}, fmt.Errorf("invalid lock token format")
	}
	return usecase.LockInfo{PID: pid}, nil
}

func getProcessStartTicks(pid int) (int64, bool) {
	if pid <= 0 {
		return 0, false
	}
	if runtime.GOOS != osLinux {
		return 0, false
	}
	statPath := fmt.Sprintf("/proc/%d/stat", pid)
	// #nosec G304 -- reading /proc/<pid>/stat from controlled path.
	data, err := os.ReadFile(statPath)
	if err != nil {
		return 0, false
	}
	parts := strings.Fields(string(data))
	if len(parts) < 22 {
		return 0, false
	}
	startTicks, err := strconv.ParseInt(parts[21], 10, 64)
	if err != nil {
		return 0, false
	}
	return startTicks, true
}

func getProcessStartID(pid int) (string, bool) {
	if pid <= 0 {
		return "", false
	}
	switch runtime.GOOS {
	case osLinux:
		if ticks, ok := getProcessStartTicks(pid); ok {
			return fmt.Sprintf("ticks:%d", ticks), true
		}
		return "", false
	case osDarwin:
		startTime, ok := getProcessStartTimeDarwin(pid)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("lstart:%d", startTime.UnixNano()), true
	case "windows":
		startTime, ok := getProcessStartTimeWindows(pid)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("ctime:%d", startTime.UnixNano()), true
	default:
		return "", false
	}
}
