package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	appcfg "github.com/inkpress/inkpress/internal/config"
	ierrors "github.com/inkpress/inkpress/internal/errors"
	"github.com/inkpress/inkpress/internal/logfields"
)

// BucketSyncer mirrors the output tree into an object-storage bucket by
// delegating to an external sync CLI (mc-style mirror).
type BucketSyncer struct {
	cfg *appcfg.BucketConfig
}

// NewBucketSyncer constructs a syncer for the configured bucket.
func NewBucketSyncer(cfg *appcfg.BucketConfig) *BucketSyncer {
	return &BucketSyncer{cfg: cfg}
}

// Sync mirrors outputDir into the bucket. The sync tool must be on PATH.
func (s *BucketSyncer) Sync(ctx context.Context, outputDir string) error {
	tool, err := exec.LookPath(s.cfg.SyncTool)
	if err != nil {
		return ierrors.BucketSyncError(s.cfg.Bucket,
			fmt.Errorf("sync tool %q not found on PATH: %w", s.cfg.SyncTool, err))
	}

	args := []string{"mirror", "--overwrite", "--remove"}
	args = append(args, s.cfg.ExtraArgs...)
	args = append(args, outputDir, s.cfg.Bucket)

	slog.Debug("Running bucket sync",
		slog.String("tool", tool),
		slog.String("args", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, tool, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return ierrors.BucketSyncError(s.cfg.Bucket,
			fmt.Errorf("%s failed: %w: %s", s.cfg.SyncTool, err, strings.TrimSpace(string(output))))
	}

	slog.Info("Bucket synced", logfields.Bucket(s.cfg.Bucket))
	return nil
}
