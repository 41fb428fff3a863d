// Package digest implements DigestPort with SHA-256.
package digest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"

	"github.com/arkup/arkup/internal/usecase"
)

// Adapter implements usecase.DigestPort with streaming SHA-256.
type Adapter struct {
	logger  *slog.Logger
	newHash func() hash.Hash
}

// New creates a new digest adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		panic("digest adapter requires logger")
	}
	return &Adapter{logger: logger, newHash: sha256.New}
}

// Algorithm returns the digest algorithm name.
func (a *Adapter) Algorithm() string {
	return "sha256"
}

// ComputeDigest returns the hex digest of the file at path.
func (a *Adapter) ComputeDigest(ctx context.Context, path string) (string, error) {
	_ = ctx
	f, err := os.Open(path) // #nosec G304 - path is controlled by usecase
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := a.newHash()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify interface compliance at compile time.
var _ usecase.DigestPort = (*Adapter)(nil)
