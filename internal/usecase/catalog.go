package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"
)

// Archive and sidecar naming. The timestamp embedded in the filename is
// authoritative; filesystem mtime is never consulted, so renamed or copied
// archives keep their original date.
const (
	ArchiveExt        = ".tar.gz"
	SidecarExt        = ".sha256"
	archiveNamePrefix = "backup-"
	archiveTimeLayout = "2006-01-02-1504"
)

var archiveNameRE = regexp.MustCompile(`^backup-(\d{4}-\d{2}-\d{2}-\d{4})\.tar\.gz$`)

// ArchiveName returns the archive filename for the given timestamp.
func ArchiveName(t time.Time) string {
	return archiveNamePrefix + t.Format(archiveTimeLayout) + ArchiveExt
}

// SidecarName returns the digest sidecar filename for an archive filename.
func SidecarName(archiveName string) string {
	return archiveName + SidecarExt
}

// ParseArchiveName extracts the embedded timestamp from an archive filename.
// The second return value is false for names outside the archive pattern.
func ParseArchiveName(name string) (time.Time, bool) {
	m := archiveNameRE.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(archiveTimeLayout, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ListArchives enumerates archives in destDir sorted by timestamp ascending.
// Files that do not match the archive pattern are ignored silently. The
// listing always reflects the directory's contents at call time.
func ListArchives(ctx context.Context, deps *Dependencies, destDir string) ([]ArchiveRecord, error) {
	if deps == nil || deps.FileSystem == nil {
		return nil, fmt.Errorf("filesystem adapter not available: %w", ErrCritical)
	}
	fs := deps.FileSystem

	entries, err := fs.ReadDir(ctx, destDir)
	if err != nil {
		return nil, fmt.Errorf("read destination %s: %w", destDir, err)
	}

	records := make([]ArchiveRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ts, ok := ParseArchiveName(name)
		if !ok {
			continue
		}
		path := fs.Join(destDir, name)
		var size int64
		if info, err := fs.Stat(ctx, path); err == nil {
			size = info.Size()
		}
		records = append(records, ArchiveRecord{
			Timestamp:   ts,
			Name:        name,
			Path:        path,
			SizeBytes:   size,
			SidecarPath: fs.Join(destDir, SidecarName(name)),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Name < records[j].Name
		}
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}
