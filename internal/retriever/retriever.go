// Package retriever discovers spreadsheet objects under a remote-store
// prefix and turns them into tabular datasets.
package retriever

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valuationkit/mpfcore/internal/dataset"
	"github.com/valuationkit/mpfcore/internal/storage"
	"github.com/valuationkit/mpfcore/pkg/logger"
)

// Options tunes retrieval behavior. Zero values fall back to defaults.
type Options struct {
	Extensions    []string
	TempDir       string
	RetryAttempts int
	RetryBackoff  time.Duration
}

// FileResult is the per-file outcome of a retrieval batch: either a parsed
// dataset or the error that stopped this file. Failures are recorded, not
// fatal to the batch.
type FileResult struct {
	Ref     storage.ObjectRef
	Dataset *dataset.TabularDataset
	Err     error
}

type Retriever struct {
	store storage.ObjectStorage
	opts  Options
}

func New(store storage.ObjectStorage, opts Options) *Retriever {
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".xlsx", ".xlsm"}
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	return &Retriever{store: store, opts: opts}
}

// Discover lists the objects under path and filters them to spreadsheet
// files. An empty filtered set is an error even when other objects exist
// under the prefix.
func (r *Retriever) Discover(ctx context.Context, path storage.RemotePath) ([]storage.ObjectInfo, error) {
	var objects []storage.ObjectInfo
	err := storage.WithRetry(ctx, r.opts.RetryAttempts, r.opts.RetryBackoff, func() error {
		var listErr error
		objects, listErr = r.store.List(ctx, path.Bucket, path.DirPrefix())
		return listErr
	})
	if err != nil {
		return nil, err
	}

	matched := make([]storage.ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.Size == 0 && strings.HasSuffix(obj.Key, "/") {
			continue // directory marker
		}
		if r.matchesExtension(obj.Key) {
			matched = append(matched, obj)
		}
	}

	if len(matched) == 0 {
		return nil, &NoFilesFoundError{
			Path:         path,
			TotalObjects: len(objects),
			Extensions:   r.opts.Extensions,
		}
	}
	return matched, nil
}

func (r *Retriever) matchesExtension(key string) bool {
	ext := strings.ToLower(filepath.Ext(key))
	for _, want := range r.opts.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// Retrieve downloads and parses each discovered object. Per-file failures
// are reported in the corresponding FileResult; the batch only fails when
// every file does.
func (r *Retriever) Retrieve(ctx context.Context, refs []storage.ObjectInfo) ([]FileResult, error) {
	log := logger.For("retriever")

	results := make([]FileResult, len(refs))
	failed := 0
	for i, obj := range refs {
		ds, err := r.RetrieveOne(ctx, obj.ObjectRef)
		results[i] = FileResult{Ref: obj.ObjectRef, Dataset: ds, Err: err}
		if err != nil {
			failed++
			log.Warn().Str("key", obj.Key).Err(err).Msg("failed to retrieve file")
		}
	}

	if failed == len(refs) {
		return results, &NoValidFilesError{Failed: failed}
	}
	return results, nil
}

// RetrieveOne downloads one object to a transient local file and parses its
// first sheet. The temp file is removed on every exit path.
func (r *Retriever) RetrieveOne(ctx context.Context, ref storage.ObjectRef) (*dataset.TabularDataset, error) {
	tmp, err := os.CreateTemp(r.opts.TempDir, "mpf-*"+filepath.Ext(ref.Key))
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	err = storage.WithRetry(ctx, r.opts.RetryAttempts, r.opts.RetryBackoff, func() error {
		return r.store.GetFile(ctx, ref, tmpPath)
	})
	if err != nil {
		return nil, err
	}

	return dataset.Parse(tmpPath, SourceName(ref.Key))
}

// FetchAssumptions downloads a single assumption workbook and extracts the
// named sheets into datasets keyed by sheet name.
func (r *Retriever) FetchAssumptions(ctx context.Context, path storage.RemotePath, sheets []string) (map[string]*dataset.TabularDataset, error) {
	ref := storage.ObjectRef{Bucket: path.Bucket, Key: path.Prefix}

	var data []byte
	err := storage.WithRetry(ctx, r.opts.RetryAttempts, r.opts.RetryBackoff, func() error {
		var getErr error
		data, getErr = r.store.Get(ctx, ref)
		return getErr
	})
	if err != nil {
		return nil, err
	}

	return dataset.ParseSheets(bytes.NewReader(data), SourceName(ref.Key), sheets)
}

// SourceName derives a dataset's source name from an object key: the base
// file name without extension.
func SourceName(key string) string {
	base := filepath.Base(key)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
