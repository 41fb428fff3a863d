package usecase

import (
	"context"
	"fmt"
	"strings"
)

// Sidecar manifest format: "<hex digest>  <archive filename>\n", the
// two-space convention of sha256sum. Verification recomputes against the
// filename only, so the manifest stays valid after moving the pair.

func generateSidecar(ctx context.Context, deps *Dependencies, archivePath, sidecarPath string) (string, error) {
	if deps.Digest == nil || deps.Digest.Algorithm() == "" {
		return "", fmt.Errorf("no digest mechanism configured: %w", ErrChecksumTool)
	}

	digest, err := deps.Digest.ComputeDigest(ctx, archivePath)
	if err != nil {
		return "", fmt.Errorf("compute %s digest of %s: %v: %w",
			deps.Digest.Algorithm(), archivePath, err, ErrChecksumTool)
	}

	line := digest + "  " + deps.FileSystem.Base(archivePath) + "\n"
	if err := deps.FileSystem.WriteFile(ctx, sidecarPath, []byte(line), 0o644); err != nil {
		return "", fmt.Errorf("write sidecar %s: %v: %w", sidecarPath, err, ErrCritical)
	}
	return digest, nil
}

// verifyArchive recomputes the archive digest and compares it against the
// sidecar manifest. A mismatch is reported as false, not as an error; only
// infrastructure failures (unreadable sidecar, digest computation) error.
func verifyArchive(ctx context.Context, deps *Dependencies, archivePath, sidecarPath string) (bool, error) {
	data, err := deps.FileSystem.ReadFile(ctx, sidecarPath)
	if err != nil {
		return false, fmt.Errorf("read sidecar %s: %w", sidecarPath, err)
	}

	recorded, ok := parseSidecar(string(data))
	if !ok {
		return false, fmt.Errorf("sidecar %s has no digest line", sidecarPath)
	}

	actual, err := deps.Digest.ComputeDigest(ctx, archivePath)
	if err != nil {
		return false, fmt.Errorf("recompute digest of %s: %w", archivePath, err)
	}
	return strings.EqualFold(recorded, actual), nil
}

func parseSidecar(content string) (string, bool) {
	fields := strings.Fields(strings.TrimSpace(content))
	if len(fields) < 1 || fields[0] == "" {
		return "", false
	}
	return fields[0], true
}
