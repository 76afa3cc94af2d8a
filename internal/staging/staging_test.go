package staging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuationkit/mpfcore/internal/storage"
	"github.com/valuationkit/mpfcore/internal/storage/storagetest"
)

func TestSyncReproducesNestedTree(t *testing.T) {
	fake := storagetest.NewFake()
	fake.Seed("models", "term_v1/a/b/c/file1", []byte("one"))
	fake.Seed("models", "term_v1/a/file2", []byte("two"))

	dest := t.TempDir()
	remote := storage.RemotePath{Bucket: "models", Prefix: "term_v1/"}

	n, err := Sync(context.Background(), fake, remote, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	one, err := os.ReadFile(filepath.Join(dest, "a", "b", "c", "file1"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(one))

	two, err := os.ReadFile(filepath.Join(dest, "a", "file2"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(two))
}

func TestSyncSkipsDirectoryMarkers(t *testing.T) {
	fake := storagetest.NewFake()
	fake.Seed("models", "term_v1/a/", nil)
	fake.Seed("models", "term_v1/a/file", []byte("data"))

	dest := t.TempDir()
	n, err := Sync(context.Background(), fake, storage.RemotePath{Bucket: "models", Prefix: "term_v1"}, dest)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSyncOverwritesExistingFiles(t *testing.T) {
	fake := storagetest.NewFake()
	fake.Seed("models", "term_v1/file", []byte("new"))

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "file"), []byte("stale"), 0o644))

	_, err := Sync(context.Background(), fake, storage.RemotePath{Bucket: "models", Prefix: "term_v1"}, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "file"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSyncAttributesFailureToKey(t *testing.T) {
	fake := storagetest.NewFake()
	fake.Seed("models", "term_v1/good", []byte("ok"))
	fake.Seed("models", "term_v1/zzz_bad", []byte("x"))
	fake.FailGet("models", "term_v1/zzz_bad", storagetest.NetworkErr("get"))

	dest := t.TempDir()
	_, err := Sync(context.Background(), fake, storage.RemotePath{Bucket: "models", Prefix: "term_v1"}, dest)
	require.Error(t, err)

	var syncErr *SyncError
	require.True(t, errors.As(err, &syncErr))
	assert.Equal(t, "term_v1/zzz_bad", syncErr.FailedKey)

	// Partial tree from before the failure is acceptable.
	_, statErr := os.Stat(filepath.Join(dest, "good"))
	assert.NoError(t, statErr)
}
