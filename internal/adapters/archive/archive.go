// Package archive implements ArchiverPort with tar.gz archives.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/arkup/arkup/internal/usecase"
)

// Adapter implements usecase.ArchiverPort using archive/tar and
// compress/gzip in-process.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new archive adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		panic("archive adapter requires logger")
	}
	return &Adapter{logger: logger}
}

// BuildArchive writes a gzip-compressed tar of sourceDir's contents to
// outPath. Entry names are relative to sourceDir so extraction reproduces
// the tree under any target. Cancellation is checked per entry; the caller
// owns cleanup of outPath on failure.
func (a *Adapter) BuildArchive(ctx context.Context, sourceDir, outPath string) error {
	out, err := os.Create(outPath) // #nosec G304 - outPath is controlled by usecase
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}

	gw := gzip.NewWriter(out)
	tw := tar.NewWriter(gw)

	walkErr := filepath.Walk(sourceDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		return writeEntry(tw, path, filepath.ToSlash(rel), info)
	})

	if err := closeAll(tw, gw, out); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		return walkErr
	}

	a.logger.Debug("Archive built", "source", sourceDir, "archive", outPath)
	return nil
}

func writeEntry(tw *tar.Writer, path, name string, info fs.FileInfo) error {
	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return fmt.Errorf("read symlink %s: %w", path, err)
		}
		link = target
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("tar header for %s: %w", path, err)
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write tar header for %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(path) // #nosec G304 - path comes from walking the source tree
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("copy %s into archive: %w", path, err)
	}
	return nil
}

// ExtractArchive unpacks archivePath into targetDir, preserving directory
// structure, file modes and symlinks. Entries escaping targetDir are
// rejected.
func (a *Adapter) ExtractArchive(ctx context.Context, archivePath, targetDir string) error {
	f, err := os.Open(archivePath) // #nosec G304 - archivePath is controlled by usecase
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read gzip stream: %w", err)
	}
	defer gr.Close()

	cleanTarget := filepath.Clean(targetDir)
	tr := tar.NewReader(gr)
	for {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar stream: %w", err)
		}
		if err := extractEntry(tr, hdr, cleanTarget); err != nil {
			return err
		}
	}

	a.logger.Debug("Archive extracted", "archive", archivePath, "target", targetDir)
	return nil
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, targetDir string) error {
	dest := filepath.Join(targetDir, filepath.FromSlash(hdr.Name))
	if !strings.HasPrefix(dest, targetDir+string(os.PathSeparator)) && dest != targetDir {
		return fmt.Errorf("archive entry %q escapes target directory", hdr.Name)
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(dest, entryMode(hdr, 0o755))
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return err
		}
		return os.Symlink(hdr.Linkname, dest)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entryMode(hdr, 0o644)) // #nosec G304
		if err != nil {
			return fmt.Errorf("create %s: %w", dest, err)
		}
		// Size from the validated tar header bounds the copy.
		if _, err := io.CopyN(out, tr, hdr.Size); err != nil && err != io.EOF {
			_ = out.Close()
			return fmt.Errorf("write %s: %w", dest, err)
		}
		return out.Close()
	default:
		// Hard links, devices and the like are not produced by BuildArchive.
		return nil
	}
}

func entryMode(hdr *tar.Header, fallback fs.FileMode) fs.FileMode {
	mode := hdr.FileInfo().Mode().Perm()
	if mode == 0 {
		return fallback
	}
	return mode
}

func closeAll(tw *tar.Writer, gw *gzip.Writer, out *os.File) error {
	if err := tw.Close(); err != nil {
		_ = gw.Close()
		_ = out.Close()
		return fmt.Errorf("finalize tar stream: %w", err)
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("finalize gzip stream: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close archive file: %w", err)
	}
	return nil
}

// Verify interface compliance at compile time.
var _ usecase.ArchiverPort = (*Adapter)(nil)
