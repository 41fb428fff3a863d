package usecase

// ConfigFile describes TOML configuration structure.
type ConfigFile struct {
	Backup        BackupConfig        `toml:"backup"`
	Lock          LockConfig          `toml:"lock"`
	Logging       LoggingConfig       `toml:"logging"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// BackupConfig holds backup destination and retention settings.
type BackupConfig struct {
	Destination string `toml:"destination"`
	KeepDaily   int    `toml:"keep_daily"`
	KeepWeekly  int    `toml:"keep_weekly"`
	KeepMonthly int    `toml:"keep_monthly"`
}

// LockConfig holds lock token settings.
type LockConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Dir   string `toml:"dir"`
	Level string `toml:"level"`
}

// NotificationsConfig holds simulated email settings.
type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Mailbox string `toml:"mailbox"`
	To      string `toml:"to"`
}

// Default retention counts applied when the config file is absent.
const (
	DefaultKeepDaily   = 7
	DefaultKeepWeekly  = 4
	DefaultKeepMonthly = 3
)

// SuggestedDestination is the recommended default for backup.destination.
const SuggestedDestination = "~/.local/share/arkup/archives"

const defaultMailbox = "~/.local/share/arkup/outbox.mbox"

// DefaultConfigFile returns default TOML configuration.
func DefaultConfigFile() ConfigFile {
	return ConfigFile{
		Backup: BackupConfig{
			Destination: SuggestedDestination,
			KeepDaily:   DefaultKeepDaily,
			KeepWeekly:  DefaultKeepWeekly,
			KeepMonthly: DefaultKeepMonthly,
		},
		Lock: LockConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Dir:   "~/.local/share/arkup/logs",
			Level: "info",
		},
		Notifications: NotificationsConfig{
			Enabled: false,
			Mailbox: defaultMailbox,
			To:      "operator@localhost",
		},
	}
}
