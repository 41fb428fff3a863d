package usecase

import "time"

// Config contains all runtime configuration for one invocation.
type Config struct {
	SourceDir   string
	Destination string
	LockPath    string
	KeepDaily   int
	KeepWeekly  int
	KeepMonthly int
	Verbose     bool
	DryRun      bool

	NotifyEnabled bool
	NotifyTo      string
	MailboxPath   string
}

// Policy returns the retention policy configured for rotation.
func (c *Config) Policy() RetentionPolicy {
	return RetentionPolicy{
		Daily:   c.KeepDaily,
		Weekly:  c.KeepWeekly,
		Monthly: c.KeepMonthly,
	}
}

// ArchiveRecord describes one archive found in the destination.
// Timestamp is parsed from the filename, never from filesystem metadata.
type ArchiveRecord struct {
	Timestamp   time.Time
	Name        string
	Path        string
	SizeBytes   int64
	SidecarPath string
}

// RetentionPolicy holds the number of daily/weekly/monthly buckets to keep.
type RetentionPolicy struct {
	Daily   int
	Weekly  int
	Monthly int
}

// RunState identifies the backup runner's position in its lifecycle.
type RunState string

// Runner states. Failed and Aborted are terminal from any state.
const (
	StateIdle     RunState = "idle"
	StateLocked   RunState = "locked"
	StateSpaceOK  RunState = "space-checked"
	StateBuilt    RunState = "built"
	StateChecksum RunState = "checksum-generated"
	StateVerified RunState = "verified"
	StateRotated  RunState = "rotated"
	StateDone     RunState = "done"
	StateFailed   RunState = "failed"
	StateAborted  RunState = "aborted"
)

// RunReport contains the outcome of one backup invocation.
type RunReport struct {
	State       RunState
	DryRun      bool
	ArchiveName string
	ArchivePath string
	ArchiveSize int64
	SidecarPath string
	Verified    bool
	Kept        int
	Deleted     int
	Started     time.Time
	Finished    time.Time
}

// FileInfo represents file information.
type FileInfo interface {
	Name() string
	Size() int64
	Mode() int
	ModTime() time.Time
	IsDir() bool
	IsSymlink() bool
	IsRegular() bool
	Sys() interface{}
}

// WalkFunc is called for each file/directory during Walk.
type WalkFunc func(path string, info FileInfo, err error) error

// DirEntry represents a directory entry.
type DirEntry interface {
	Name() string
	IsDir() bool
}

// LockInfo represents lock token contents.
type LockInfo struct {
	PID               int       `json:"pid"`
	StartTime         time.Time `json:"start_time"`
	SourceDir         string    `json:"source_dir"`
	Destination       string    `json:"destination"`
	Hostname          string    `json:"hostname"`
	ProcessStartTicks int64     `json:"process_start_ticks"`
	ProcessStartID    string    `json:"process_start_id"`
}
