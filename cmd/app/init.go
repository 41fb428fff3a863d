package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arkup/arkup/internal/usecase"
)

func newInitCmd(depsFactory func(*slog.Logger) *usecase.Dependencies, exitCode *int) *cobra.Command {
	var (
		destination string
		force       bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default arkup config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := setupLogger(false)
			deps := depsFactory(logger)
			homeDir, err := os.UserHomeDir()
			if err != nil {
				handleCmdError(exitCode, fmt.Errorf("resolve home dir: %w", usecase.ErrCritical))
				return
			}
			opts := usecase.InitOptions{
				Destination: destination,
				Force:       force,
				DryRun:      dryRun,
				HomeDir:     homeDir,
			}
			handleCmdError(exitCode, usecase.Init(cmd.Context(), opts, deps, logger))
		},
	}

	cmd.Flags().StringVar(
		&destination, "destination", "",
		"archive destination directory (suggested: "+usecase.SuggestedDestination+")",
	)
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan changes without writing to disk")

	_ = cmd.RegisterFlagCompletionFunc("destination",
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		},
	)

	return cmd
}
