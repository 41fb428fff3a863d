// Package app wires default adapter implementations into use cases.
package app

import (
	"log/slog"

	"github.com/arkup/arkup/internal/adapters/archive"
	"github.com/arkup/arkup/internal/adapters/config"
	"github.com/arkup/arkup/internal/adapters/digest"
	"github.com/arkup/arkup/internal/adapters/filesystem"
	"github.com/arkup/arkup/internal/adapters/lock"
	"github.com/arkup/arkup/internal/adapters/notification"
	"github.com/arkup/arkup/internal/adapters/process"
	"github.com/arkup/arkup/internal/adapters/space"
	"github.com/arkup/arkup/internal/usecase"
)

// NewDefaultDependencies creates dependencies with real adapters.
func NewDefaultDependencies(logger *slog.Logger) *usecase.Dependencies {
	if logger == nil {
		panic("default dependencies require logger")
	}
	return &usecase.Dependencies{
		FileSystem:   filesystem.New(logger),
		Archiver:     archive.New(logger),
		Digest:       digest.New(logger),
		Space:        space.New(logger),
		Lock:         lock.New(logger),
		Process:      process.New(logger),
		Config:       config.New(logger),
		Notification: notification.New(logger),
	}
}
