package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Real-filesystem adapter used by tests that exercise actual files.

type testFileSystem struct{}

func newTestFileSystem() *testFileSystem {
	return &testFileSystem{}
}

func (a *testFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	_ = ctx
	// #nosec G304 -- test paths are controlled by the test harness.
	return os.ReadFile(path)
}

func (a *testFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm int) error {
	_ = ctx
	return os.WriteFile(path, data, fs.FileMode(perm)) // #nosec G306
}

func (a *testFileSystem) CreateDir(ctx context.Context, path string, perm int) error {
	_ = ctx
	return os.MkdirAll(path, fs.FileMode(perm)) // #nosec G301
}

func (a *testFileSystem) Remove(ctx context.Context, path string) error {
	_ = ctx
	return os.Remove(path)
}

func (a *testFileSystem) RemoveAll(ctx context.Context, path string) error {
	_ = ctx
	return os.RemoveAll(path)
}

func (a *testFileSystem) Stat(ctx context.Context, path string) (FileInfo, error) {
	_ = ctx
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &testFileInfo{info}, nil
}

func (a *testFileSystem) Walk(ctx context.Context, root string, walkFn WalkFunc) error {
	_ = ctx
	return filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		var fileInfo FileInfo
		if info != nil {
			fileInfo = &testFileInfo{info}
		}
		return walkFn(path, fileInfo, err)
	})
}

func (a *testFileSystem) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	_ = ctx
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	result := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, &testDirEntry{entry})
	}
	return result, nil
}

func (a *testFileSystem) Move(ctx context.Context, src, dst string) error {
	_ = ctx
	return os.Rename(src, dst)
}

func (a *testFileSystem) Join(elements ...string) string { return filepath.Join(elements...) }
func (a *testFileSystem) Base(path string) string        { return filepath.Base(path) }
func (a *testFileSystem) Dir(path string) string         { return filepath.Dir(path) }

func (a *testFileSystem) IsNotExist(err error) bool   { return errors.Is(err, fs.ErrNotExist) }
func (a *testFileSystem) IsPermission(err error) bool { return errors.Is(err, fs.ErrPermission) }

type testFileInfo struct {
	info fs.FileInfo
}

func (w *testFileInfo) Name() string       { return w.info.Name() }
func (w *testFileInfo) Size() int64        { return w.info.Size() }
func (w *testFileInfo) Mode() int          { return int(w.info.Mode()) }
func (w *testFileInfo) ModTime() time.Time { return w.info.ModTime() }
func (w *testFileInfo) IsDir() bool        { return w.info.IsDir() }
func (w *testFileInfo) IsSymlink() bool    { return w.info.Mode()&fs.ModeSymlink != 0 }
func (w *testFileInfo) IsRegular() bool    { return w.info.Mode().IsRegular() }
func (w *testFileInfo) Sys() interface{}   { return w.info.Sys() }

type testDirEntry struct {
	entry fs.DirEntry
}

func (w *testDirEntry) Name() string { return w.entry.Name() }
func (w *testDirEntry) IsDir() bool  { return w.entry.IsDir() }

// Fake archiver: concatenates the source tree's file contents into the
// output file. Deterministic and cheap, and restore can be asserted by
// recording calls.

type fakeArchiver struct {
	BuildFunc   func(ctx context.Context, sourceDir, outPath string) error
	ExtractFunc func(ctx context.Context, archivePath, targetDir string) error

	builds   []string
	extracts [][2]string
}

func (m *fakeArchiver) BuildArchive(ctx context.Context, sourceDir, outPath string) error {
	m.builds = append(m.builds, outPath)
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx, sourceDir, outPath)
	}
	var blob []byte
	err := filepath.Walk(sourceDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			data, rerr := os.ReadFile(path) // #nosec G304 -- test harness path.
			if rerr != nil {
				return rerr
			}
			blob = append(blob, data...)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, blob, 0o600)
}

func (m *fakeArchiver) ExtractArchive(ctx context.Context, archivePath, targetDir string) error {
	m.extracts = append(m.extracts, [2]string{archivePath, targetDir})
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, archivePath, targetDir)
	}
	return nil
}

// Fake digest: sha256 over the file contents, optionally overridable to
// force mismatches or tool failures.

type fakeDigest struct {
	AlgorithmName string
	ComputeFunc   func(ctx context.Context, path string) (string, error)
}

func (m *fakeDigest) Algorithm() string {
	if m.AlgorithmName != "" {
		return m.AlgorithmName
	}
	return "sha256"
}

func (m *fakeDigest) ComputeDigest(ctx context.Context, path string) (string, error) {
	if m.ComputeFunc != nil {
		return m.ComputeFunc(ctx, path)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- test harness path.
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

type fakeSpace struct {
	Free uint64
	Err  error
}

func (m *fakeSpace) FreeBytes(ctx context.Context, path string) (uint64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Free, nil
}

// Fake lock with scriptable behavior; default acquires in memory.

type fakeLock struct {
	TryAcquireFunc func(ctx context.Context, path string, info LockInfo) error
	IsStaleFunc    func(ctx context.Context, path string) (bool, LockInfo, error)

	held     map[string]LockInfo
	reclaims int
	releases int
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: make(map[string]LockInfo)}
}

func (m *fakeLock) TryAcquire(ctx context.Context, path string, info LockInfo) error {
	if m.TryAcquireFunc != nil {
		return m.TryAcquireFunc(ctx, path, info)
	}
	if _, ok := m.held[path]; ok {
		return ErrLockBusy
	}
	m.held[path] = info
	return nil
}

func (m *fakeLock) IsStale(ctx context.Context, path string) (bool, LockInfo, error) {
	if m.IsStaleFunc != nil {
		return m.IsStaleFunc(ctx, path)
	}
	info := m.held[path]
	return false, info, nil
}

func (m *fakeLock) Reclaim(ctx context.Context, path string) error {
	m.reclaims++
	delete(m.held, path)
	return nil
}

func (m *fakeLock) Release(ctx context.Context, path string) error {
	m.releases++
	delete(m.held, path)
	return nil
}

type fakeProcess struct {
	PID int
}

func (m *fakeProcess) GetPID() int {
	if m.PID != 0 {
		return m.PID
	}
	return os.Getpid()
}

type fakeNotification struct {
	SendFunc func(ctx context.Context, mailboxPath, to, subject, body string) error

	sent []sentMessage
}

type sentMessage struct {
	Mailbox string
	To      string
	Subject string
	Body    string
}

func (m *fakeNotification) Send(ctx context.Context, mailboxPath, to, subject, body string) error {
	m.sent = append(m.sent, sentMessage{Mailbox: mailboxPath, To: to, Subject: subject, Body: body})
	if m.SendFunc != nil {
		return m.SendFunc(ctx, mailboxPath, to, subject, body)
	}
	return nil
}

// newTestDeps wires the fakes into a Dependencies value backed by the real
// filesystem under the test's temp directory.
func newTestDeps() (*Dependencies, *fakeArchiver, *fakeLock, *fakeSpace, *fakeNotification) {
	archiver := &fakeArchiver{}
	lock := newFakeLock()
	space := &fakeSpace{Free: 1 << 40}
	notify := &fakeNotification{}
	deps := &Dependencies{
		FileSystem:   newTestFileSystem(),
		Archiver:     archiver,
		Digest:       &fakeDigest{},
		Space:        space,
		Lock:         lock,
		Process:      &fakeProcess{},
		Notification: notify,
	}
	return deps, archiver, lock, space, notify
}
