// Package filesystem implements FileSystemPort with real OS operations.
package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/arkup/arkup/internal/usecase"
)

// Adapter implements usecase.FileSystemPort using the os package.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new filesystem adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		panic("filesystem adapter requires logger")
	}
	return &Adapter{logger: logger}
}

// ReadFile reads the file at path.
func (a *Adapter) ReadFile(ctx context.Context, path string) ([]byte, error) {
	_ = ctx
	// #nosec G304 - paths are controlled by usecase
	return os.ReadFile(path)
}

// WriteFile writes data to path with the given permissions.
func (a *Adapter) WriteFile(ctx context.Context, path string, data []byte, perm int) error {
	_ = ctx
	return os.WriteFile(path, data, safeFileMode(perm, 0o644))
}

// CreateDir creates path and any missing parents.
func (a *Adapter) CreateDir(ctx context.Context, path string, perm int) error {
	_ = ctx
	return os.MkdirAll(path, safeFileMode(perm, 0o755))
}

// Remove removes a single file or empty directory.
func (a *Adapter) Remove(ctx context.Context, path string) error {
	_ = ctx
	return os.Remove(path)
}

// RemoveAll removes path and its children.
func (a *Adapter) RemoveAll(ctx context.Context, path string) error {
	_ = ctx
	return os.RemoveAll(path)
}

// Stat returns file information for path.
func (a *Adapter) Stat(ctx context.Context, path string) (usecase.FileInfo, error) {
	_ = ctx
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &fileInfoWrapper{info}, nil
}

// Walk traverses the tree rooted at root.
func (a *Adapter) Walk(ctx context.Context, root string, walkFn usecase.WalkFunc) error {
	_ = ctx
	return filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		var fileInfo usecase.FileInfo
		if info != nil {
			fileInfo = &fileInfoWrapper{info}
		}
		return walkFn(path, fileInfo, err)
	})
}

// ReadDir lists the entries of path.
func (a *Adapter) ReadDir(ctx context.Context, path string) ([]usecase.DirEntry, error) {
	_ = ctx
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	result := make([]usecase.DirEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, &dirEntryWrapper{entry})
	}
	return result, nil
}

// Move renames src to dst. On a shared filesystem this is atomic.
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	_ = ctx
	return os.Rename(src, dst)
}

// Join joins path elements.
func (a *Adapter) Join(elements ...string) string {
	return filepath.Join(elements...)
}

// Base returns the last element of path.
func (a *Adapter) Base(path string) string {
	return filepath.Base(path)
}

// Dir returns all but the last element of path.
func (a *Adapter) Dir(path string) string {
	return filepath.Dir(path)
}

// IsNotExist reports whether err means the file does not exist.
func (a *Adapter) IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// IsPermission reports whether err means permission was denied.
func (a *Adapter) IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

func safeFileMode(perm int, fallback fs.FileMode) fs.FileMode {
	if perm < 0 || perm > 0o777 {
		return fallback
	}
	// #nosec G115 -- perm validated to be within safe range.
	return fs.FileMode(perm)
}

type fileInfoWrapper struct {
	info fs.FileInfo
}

func (w *fileInfoWrapper) Name() string       { return w.info.Name() }
func (w *fileInfoWrapper) Size() int64        { return w.info.Size() }
func (w *fileInfoWrapper) Mode() int          { return int(w.info.Mode()) }
func (w *fileInfoWrapper) ModTime() time.Time { return w.info.ModTime() }
func (w *fileInfoWrapper) IsDir() bool        { return w.info.IsDir() }

func (w *fileInfoWrapper) IsSymlink() bool {
	return w.info.Mode()&fs.ModeSymlink != 0
}

func (w *fileInfoWrapper) IsRegular() bool {
	return w.info.Mode().IsRegular()
}

func (w *fileInfoWrapper) Sys() interface{} { return w.info.Sys() }

type dirEntryWrapper struct {
	entry fs.DirEntry
}

func (w *dirEntryWrapper) Name() string { return w.entry.Name() }
func (w *dirEntryWrapper) IsDir() bool  { return w.entry.IsDir() }
