package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arkup/arkup/internal/usecase"
)

func newStatusCmd(depsFactory func(*slog.Logger) *usecase.Dependencies, exitCode *int) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show arkup configuration and destination contents",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := setupLogger(false)
			state, err := initRootState(cmd.Context(), depsFactory, logger)
			if err != nil {
				handleCmdError(exitCode, err)
				return
			}
			report, err := usecase.Status(cmd.Context(), state.runtimeCfg, state.deps)
			if err != nil {
				handleCmdError(exitCode, err)
				return
			}
			if _, err := fmt.Fprint(os.Stdout, usecase.FormatStatus(report)); err != nil {
				handleCmdError(exitCode, err)
				return
			}
			*exitCode = exitSuccess
		},
	}
}
