package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/spf13/cobra"

	"github.com/arkup/arkup/internal/adapters/loghandler"
	"github.com/arkup/arkup/internal/adapters/noop"
	"github.com/arkup/arkup/internal/app"
	"github.com/arkup/arkup/internal/usecase"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGHUP,
	)
	defer stop()

	cmd, exitCode := newRootCmd(ctx, app.NewDefaultDependencies)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsageError
	}
	return *exitCode
}

type rootFlags struct {
	verbose bool
	dryRun  bool
	list    bool
	restore string
	to      string
}

func newRootCmd(
	ctx context.Context,
	depsFactory func(*slog.Logger) *usecase.Dependencies,
) (*cobra.Command, *int) {
	exitCode := 0
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "arkup [flags] <source-dir>",
		Short:         "Scheduled, verifiable archival backups of a directory tree",
		SilenceUsage:  false,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			exitCode = runRootCommand(ctx, flags, args, depsFactory)
		},
	}
	cmd.SetErr(os.Stderr)

	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false,
		"perform all checks but skip archive creation and deletions")
	cmd.Flags().BoolVar(&flags.list, "list", false, "list archives in the destination and exit")
	cmd.Flags().StringVar(&flags.restore, "restore", "", "restore the named archive (requires --to)")
	cmd.Flags().StringVar(&flags.to, "to", "", "target directory for --restore")

	cmd.AddCommand(newInitCmd(depsFactory, &exitCode))
	cmd.AddCommand(newStatusCmd(depsFactory, &exitCode))
	cmd.AddCommand(newVersionCmd())

	return cmd, &exitCode
}

func runRootCommand(
	ctx context.Context,
	flags *rootFlags,
	args []string,
	depsFactory func(*slog.Logger) *usecase.Dependencies,
) int {
	logger := setupLogger(flags.verbose)

	state, err := initRootState(ctx, depsFactory, logger)
	if err != nil {
		return mapExitCodeWithLog(err)
	}
	if !state.configExists {
		logger.Warn("No config file found, using defaults", "path", state.configPath)
	}

	fileLogger, cleanup := withFileLogging(logger, state.configFile.Logging, flags.verbose)
	defer cleanup()
	logger = fileLogger

	cfg := state.runtimeCfg
	cfg.Verbose = flags.verbose
	cfg.DryRun = flags.dryRun

	if !cfg.NotifyEnabled {
		state.deps.Notification = noop.NewNotificationAdapter()
	}

	switch {
	case flags.list:
		records, err := usecase.List(ctx, cfg, state.deps)
		if err != nil {
			return mapExitCodeWithLog(err)
		}
		fmt.Fprint(os.Stdout, usecase.FormatList(records))
		return exitSuccess

	case flags.restore != "":
		if strings.TrimSpace(flags.to) == "" {
			fmt.Fprintln(os.Stderr, "--restore requires --to <dest-dir>")
			return exitUsageError
		}
		return mapExitCodeWithLog(
			usecase.Restore(ctx, cfg, state.deps, logger, flags.restore, flags.to))

	default:
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "source directory required (or use --list / --restore)")
			return exitUsageError
		}
		cfg.SourceDir = filepath.Clean(args[0])
		_, err := usecase.Backup(ctx, cfg, state.deps, logger)
		return mapExitCodeWithLog(err)
	}
}

type rootState struct {
	deps         *usecase.Dependencies
	configFile   usecase.ConfigFile
	configPath   string
	configExists bool
	runtimeCfg   *usecase.Config
}

func initRootState(
	ctx context.Context,
	depsFactory func(*slog.Logger) *usecase.Dependencies,
	logger *slog.Logger,
) (rootState, error) {
	deps := depsFactory(logger)
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return rootState{}, fmt.Errorf("resolve home dir: %v: %w", err, usecase.ErrCritical)
	}
	configPath := usecase.ConfigFilePath(deps.FileSystem, homeDir)
	configFile, configExists, err := loadConfigFile(ctx, deps, configPath)
	if err != nil {
		return rootState{}, err
	}
	runtimeCfg, err := usecase.RuntimeConfigFromFile(configFile, homeDir)
	if err != nil {
		return rootState{}, err
	}
	return rootState{
		deps:         deps,
		configFile:   configFile,
		configPath:   configPath,
		configExists: configExists,
		runtimeCfg:   runtimeCfg,
	}, nil
}

func loadConfigFile(
	ctx context.Context,
	deps *usecase.Dependencies,
	configPath string,
) (usecase.ConfigFile, bool, error) {
	if deps == nil || deps.Config == nil || deps.FileSystem == nil {
		return usecase.ConfigFile{}, false, fmt.Errorf("dependencies not available: %w", usecase.ErrCritical)
	}
	info, err := deps.FileSystem.Stat(ctx, configPath)
	exists := false
	if err == nil {
		if info != nil && info.IsDir() {
			return usecase.ConfigFile{}, false, fmt.Errorf("config path is a directory: %w", usecase.ErrUsage)
		}
		exists = true
	} else if !deps.FileSystem.IsNotExist(err) {
		return usecase.ConfigFile{}, false, fmt.Errorf("stat config: %w", usecase.ErrCritical)
	}
	cfg, err := deps.Config.Load(ctx, configPath)
	if err != nil {
		return usecase.ConfigFile{}, false, fmt.Errorf("load config: %w", usecase.ErrCritical)
	}
	return cfg, exists, nil
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := loghandler.NewHandler(os.Stderr, &loghandler.Options{
		Level:    level,
		UseColor: shouldUseColor(os.Stderr),
	})
	return slog.New(handler)
}

func withFileLogging(
	logger *slog.Logger,
	logCfg usecase.LoggingConfig,
	verbose bool,
) (*slog.Logger, func()) {
	dir := strings.TrimSpace(logCfg.Dir)
	if dir == "" {
		return logger, func() {}
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("Cannot resolve home dir for log file", "error", err)
		return logger, func() {}
	}
	expanded := usecase.ExpandHomeDirPublic(dir, homeDir)
	if err := os.MkdirAll(expanded, 0o750); err != nil {
		logger.Warn("Cannot create log directory", "path", expanded, "error", err)
		return logger, func() {}
	}
	filename := "arkup-" + time.Now().Format("2006-01-02") + ".log"
	logPath := filepath.Join(expanded, filename)

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path from config
	if err != nil {
		logger.Warn("Cannot open log file", "path", logPath, "error", err)
		return logger, func() {}
	}

	fileLevel := parseLogLevel(logCfg.Level)
	if verbose && fileLevel > slog.LevelDebug {
		fileLevel = slog.LevelDebug
	}
	fileHandler := loghandler.NewHandler(f, &loghandler.Options{
		Level:    fileLevel,
		UseColor: false,
	})

	stderrHandler := logger.Handler()
	combined := loghandler.NewMultiHandler(stderrHandler, fileHandler)
	return slog.New(combined), func() { _ = f.Close() }
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func shouldUseColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func mapExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	switch {
	case errors.Is(err, usecase.ErrUsage):
		return exitUsageError
	case errors.Is(err, usecase.ErrLockBusy):
		return exitLockBusy
	case errors.Is(err, usecase.ErrInterrupted):
		return exitInterrupted
	default:
		return exitCriticalError
	}
}
