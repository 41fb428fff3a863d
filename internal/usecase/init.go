package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// InitOptions controls config file creation.
type InitOptions struct {
	Destination string
	Force       bool
	DryRun      bool
	HomeDir     string
}

// Init writes the commented default config file. An existing config is only
// overwritten with Force.
func Init(ctx context.Context, opts InitOptions, deps *Dependencies, logger *slog.Logger) error {
	if logger == nil {
		panic("logger is required")
	}
	if deps == nil || deps.FileSystem == nil || deps.Config == nil {
		return fmt.Errorf("dependencies not available: %w", ErrCritical)
	}
	if strings.TrimSpace(opts.HomeDir) == "" {
		return fmt.Errorf("home directory is empty: %w", ErrCritical)
	}
	fs := deps.FileSystem

	configPath := ConfigFilePath(fs, opts.HomeDir)
	if _, err := fs.Stat(ctx, configPath); err == nil && !opts.Force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite): %w",
			configPath, ErrUsage)
	}

	cfg := DefaultConfigFile()
	if dest := strings.TrimSpace(opts.Destination); dest != "" {
		cfg.Backup.Destination = dest
	}

	if opts.DryRun {
		logger.Info("Dry-run: would write config", "path", configPath,
			"destination", cfg.Backup.Destination)
		return nil
	}

	if err := fs.CreateDir(ctx, fs.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("create config directory: %v: %w", err, ErrCritical)
	}
	if err := deps.Config.Save(ctx, configPath, cfg); err != nil {
		return fmt.Errorf("write config %s: %v: %w", configPath, err, ErrCritical)
	}

	logger.Info("Config written", "path", configPath, "destination", cfg.Backup.Destination)
	return nil
}

// ConfigFilePath returns the config file location under the user's home.
func ConfigFilePath(fs FileSystemPort, homeDir string) string {
	return fs.Join(homeDir, ".config", "arkup", "config.toml")
}
