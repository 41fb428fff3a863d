package usecase

import (
	"fmt"
	"strings"
)

// RuntimeConfigFromFile converts TOML config into runtime config for execution.
func RuntimeConfigFromFile(cfg ConfigFile, homeDir string) (*Config, error) {
	cleanHome := strings.TrimSpace(homeDir)
	if cleanHome == "" {
		return nil, fmt.Errorf("home directory is empty: %w", ErrCritical)
	}

	dest := strings.TrimSpace(cfg.Backup.Destination)
	if dest != "" {
		dest = expandHomeDir(dest, cleanHome)
	}

	if cfg.Backup.KeepDaily < 0 || cfg.Backup.KeepWeekly < 0 || cfg.Backup.KeepMonthly < 0 {
		return nil, fmt.Errorf("retention counts must not be negative: %w", ErrUsage)
	}

	lockPath := strings.TrimSpace(cfg.Lock.Path)
	if lockPath != "" {
		lockPath = expandHomeDir(lockPath, cleanHome)
	} else if dest != "" {
		lockPath = strings.TrimRight(dest, "/") + "/.arkup.lock"
	}

	mailbox := strings.TrimSpace(cfg.Notifications.Mailbox)
	if mailbox != "" {
		mailbox = expandHomeDir(mailbox, cleanHome)
	}

	return &Config{
		Destination:   dest,
		LockPath:      lockPath,
		KeepDaily:     cfg.Backup.KeepDaily,
		KeepWeekly:    cfg.Backup.KeepWeekly,
		KeepMonthly:   cfg.Backup.KeepMonthly,
		NotifyEnabled: cfg.Notifications.Enabled,
		NotifyTo:      strings.TrimSpace(cfg.Notifications.To),
		MailboxPath:   mailbox,
	}, nil
}

// ExpandHomeDirPublic exposes home expansion for the command layer.
func ExpandHomeDirPublic(path, homeDir string) string {
	return expandHomeDir(path, homeDir)
}

func expandHomeDir(path, homeDir string) string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return clean
	}
	if clean == "~" {
		return homeDir
	}
	if strings.HasPrefix(clean, "~/") {
		return strings.TrimRight(homeDir, "/") + clean[1:]
	}
	if clean == "$HOME" {
		return homeDir
	}
	if strings.HasPrefix(clean, "$HOME/") {
		return strings.TrimRight(homeDir, "/") + clean[len("$HOME"):]
	}
	if clean == "${HOME}" {
		return homeDir
	}
	if strings.HasPrefix(clean, "${HOME}/") {
		return strings.TrimRight(homeDir, "/") + clean[len("${HOME}"):]
	}
	return clean
}
