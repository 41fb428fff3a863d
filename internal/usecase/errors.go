package usecase

import "errors"

var (
	// ErrUsage indicates user input/usage errors.
	ErrUsage = errors.New("usage error")
	// ErrCritical indicates critical failures that should exit with error.
	ErrCritical = errors.New("critical error")
	// ErrLockBusy indicates an active lock held by another process.
	ErrLockBusy = errors.New("lock busy")
	// ErrInterrupted indicates a canceled or interrupted operation.
	ErrInterrupted = errors.New("interrupted")
	// ErrSourceNotFound indicates the backup source directory does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrPermission indicates the backup source is not readable.
	ErrPermission = errors.New("permission denied")
	// ErrInsufficientSpace indicates the destination lacks room for a new archive.
	ErrInsufficientSpace = errors.New("insufficient space")
	// ErrArchiveBuild indicates archive creation failed.
	ErrArchiveBuild = errors.New("archive build failed")
	// ErrChecksumTool indicates no digest mechanism is available.
	ErrChecksumTool = errors.New("checksum tool unavailable")
	// ErrBackupNotFound indicates the named archive does not exist in the destination.
	ErrBackupNotFound = errors.New("backup not found")
)
