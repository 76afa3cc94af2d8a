// Package staging mirrors a remote-store folder into a local directory
// tree, preserving relative paths. Used to stage whole model packages for
// the calculation engine.
package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/valuationkit/mpfcore/internal/storage"
	"github.com/valuationkit/mpfcore/pkg/logger"
)

// SyncError attributes a failed sync to the object that broke it. A partial
// local tree may remain; FailedKey says where the mirror stopped.
type SyncError struct {
	FailedKey string
	Cause     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync aborted at %s: %v", e.FailedKey, e.Cause)
}

func (e *SyncError) Unwrap() error { return e.Cause }

// Sync downloads every object under remotePath into localRoot, recreating
// the remote tree relative to the prefix. Existing files are overwritten
// and intermediate directories created on demand. Zero-byte directory
// markers are skipped. Returns the number of files written.
func Sync(ctx context.Context, store storage.ObjectStorage, remotePath storage.RemotePath, localRoot string) (int, error) {
	log := logger.For("staging")

	objects, err := store.List(ctx, remotePath.Bucket, remotePath.DirPrefix())
	if err != nil {
		return 0, err
	}

	written := 0
	for _, obj := range objects {
		if obj.Size == 0 && strings.HasSuffix(obj.Key, "/") {
			continue
		}

		rel := strings.TrimPrefix(obj.Key, remotePath.DirPrefix())
		localPath := filepath.Join(localRoot, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return written, &SyncError{FailedKey: obj.Key, Cause: err}
		}
		if err := store.GetFile(ctx, obj.ObjectRef, localPath); err != nil {
			return written, &SyncError{FailedKey: obj.Key, Cause: err}
		}
		written++
	}

	log.Info().Str("remote", remotePath.String()).Str("local", localRoot).
		Int("files", written).Msg("folder sync complete")
	return written, nil
}
