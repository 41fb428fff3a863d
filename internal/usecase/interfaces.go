package usecase

import "context"

// Dependencies represents all external dependencies needed by use cases
type Dependencies struct {
	FileSystem   FileSystemPort
	Archiver     ArchiverPort
	Digest       DigestPort
	Space        SpacePort
	Lock         LockPort
	Process      ProcessPort
	Config       ConfigPort
	Notification NotificationPort
}

// Ports define the interfaces that use cases need (hexagonal architecture)

// FileSystemPort defines filesystem operations needed by use cases
type FileSystemPort interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm int) error
	CreateDir(ctx context.Context, path string, perm int) error
	Remove(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
	Stat(ctx context.Context, path string) (FileInfo, error)
	Walk(ctx context.Context, root string, walkFn WalkFunc) error
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)

	// Move must be an atomic rename when src and dst share a filesystem.
	Move(ctx context.Context, src, dst string) error

	// Path operations
	Join(elements ...string) string
	Base(path string) string
	Dir(path string) string

	// Error classification
	IsNotExist(err error) bool
	IsPermission(err error) bool
}

// ArchiverPort defines archive construction and extraction.
type ArchiverPort interface {
	// BuildArchive writes a compressed archive of sourceDir to outPath.
	// outPath is a scratch location; the caller performs the atomic move.
	BuildArchive(ctx context.Context, sourceDir, outPath string) error

	// ExtractArchive unpacks archivePath into targetDir preserving structure.
	ExtractArchive(ctx context.Context, archivePath, targetDir string) error
}

// DigestPort defines content digest computation for archives.
type DigestPort interface {
	// Algorithm returns the digest algorithm name (e.g. "sha256").
	Algorithm() string

	// ComputeDigest returns the hex digest of the file at path.
	ComputeDigest(ctx context.Context, path string) (string, error)
}

// SpacePort defines free-space queries for the destination mount.
type SpacePort interface {
	FreeBytes(ctx context.Context, path string) (uint64, error)
}

// LockPort defines lock token operations needed by use cases.
type LockPort interface {
	// TryAcquire creates the token or fails with ErrLockBusy when one exists.
	TryAcquire(ctx context.Context, path string, info LockInfo) error

	// IsStale reports whether the existing token's owner is no longer alive.
	IsStale(ctx context.Context, path string) (bool, LockInfo, error)

	// Reclaim removes a stale token so a fresh acquire can proceed.
	Reclaim(ctx context.Context, path string) error

	// Release removes the token; safe to call when no token exists.
	Release(ctx context.Context, path string) error
}

// ProcessPort defines process operations needed by use cases
type ProcessPort interface {
	GetPID() int
}

// ConfigPort defines configuration operations needed by use cases
type ConfigPort interface {
	Load(ctx context.Context, path string) (ConfigFile, error)
	Save(ctx context.Context, path string, cfg ConfigFile) error
}

// NotificationPort defines the post-run notification channel.
type NotificationPort interface {
	// Send appends one message block to the mailbox file.
	Send(ctx context.Context, mailboxPath, to, subject, body string) error
}
