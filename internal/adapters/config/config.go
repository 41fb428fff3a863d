// Package config implements ConfigPort using TOML files on disk.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/arkup/arkup/internal/usecase"
)

// Adapter implements ConfigPort using TOML files on disk.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new config adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		panic("config adapter requires logger")
	}
	return &Adapter{logger: logger}
}

// Load reads config from path or returns defaults when file is missing.
func (a *Adapter) Load(ctx context.Context, path string) (usecase.ConfigFile, error) {
	_ = ctx
	if strings.TrimSpace(path) == "" {
		return usecase.ConfigFile{}, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is controlled by usecase
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return usecase.DefaultConfigFile(), nil
		}
		return usecase.ConfigFile{}, err
	}

	cfg := usecase.DefaultConfigFile()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return usecase.ConfigFile{}, fmt.Errorf("parse config toml: %w", err)
	}

	return cfg, nil
}

// Save writes config to path in TOML format with inline documentation.
func (a *Adapter) Save(ctx context.Context, path string, cfg usecase.ConfigFile) error {
	_ = ctx
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is empty")
	}

	content := renderCommentedTOML(cfg)

	// #nosec G306 G304 - config is not secret, path is controlled by usecase.
	return os.WriteFile(path, []byte(content), 0o644)
}

func renderCommentedTOML(cfg usecase.ConfigFile) string {
	return fmt.Sprintf(`# arkup configuration

# ── Backup Settings ──────────────────────────────────────────────
[backup]

# Directory receiving archives and their digest sidecars (required).
# Supports ~, $HOME, ${HOME}. Created automatically.
destination = %[1]q

# Tiered retention: how many daily, weekly and monthly archives survive
# rotation. The newest archive of each period is the one kept.
keep_daily = %[2]d
keep_weekly = %[3]d
keep_monthly = %[4]d

# ── Locking ──────────────────────────────────────────────────────
[lock]

# Lock token path. Empty means <destination>/.arkup.lock.
path = %[5]q

# ── Logging ──────────────────────────────────────────────────────
[logging]

# Log directory. Supports ~, $HOME, ${HOME}. Created automatically.
dir = %[6]q

# Minimum log level: debug, info, warn, error.
level = %[7]q

# ── Notifications (simulated email) ──────────────────────────────
[notifications]

# Append a message block to the mailbox file after each run.
enabled = %[8]t

# Mailbox file receiving message blocks.
mailbox = %[9]q

# Recipient address recorded in the To: header.
to = %[10]q
`,
		cfg.Backup.Destination,
		cfg.Backup.KeepDaily,
		cfg.Backup.KeepWeekly,
		cfg.Backup.KeepMonthly,
		cfg.Lock.Path,
		cfg.Logging.Dir,
		cfg.Logging.Level,
		cfg.Notifications.Enabled,
		cfg.Notifications.Mailbox,
		cfg.Notifications.To,
	)
}
