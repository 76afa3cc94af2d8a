// Package storagetest provides an in-memory ObjectStorage for tests.
package storagetest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/valuationkit/mpfcore/internal/storage"
)

// Fake is an in-memory object store. Failures can be injected per key or
// for listings; GetAttempts counts calls for retry assertions.
type Fake struct {
	mu      sync.Mutex
	objects map[string][]byte

	ListErr     error
	GetErrs     map[string]error
	GetAttempts map[string]int
}

func NewFake() *Fake {
	return &Fake{
		objects:     make(map[string][]byte),
		GetErrs:     make(map[string]error),
		GetAttempts: make(map[string]int),
	}
}

func objectID(bucket, key string) string { return bucket + "/" + key }

// Seed stores an object without going through Put's error injection.
func (f *Fake) Seed(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectID(bucket, key)] = data
}

// FailGet makes every Get/GetFile for key return err. A nil err clears the
// injection.
func (f *Fake) FailGet(bucket, key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.GetErrs, objectID(bucket, key))
		return
	}
	f.GetErrs[objectID(bucket, key)] = err
}

// FailGetOnce makes the next n Get/GetFile calls for key fail with err,
// succeeding afterwards.
func (f *Fake) FailGetOnce(bucket, key string, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetErrs[objectID(bucket, key)] = &transientErr{remaining: n, err: err}
}

type transientErr struct {
	remaining int
	err       error
}

func (t *transientErr) Error() string { return t.err.Error() }

func (f *Fake) List(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	var out []storage.ObjectInfo
	for id, data := range f.objects {
		b, key, _ := strings.Cut(id, "/")
		if b == bucket && strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{
				ObjectRef: storage.ObjectRef{Bucket: bucket, Key: key},
				Size:      int64(len(data)),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *Fake) Get(ctx context.Context, ref storage.ObjectRef) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getLocked(ref)
}

func (f *Fake) getLocked(ref storage.ObjectRef) ([]byte, error) {
	id := objectID(ref.Bucket, ref.Key)
	f.GetAttempts[id]++

	if injected, ok := f.GetErrs[id]; ok {
		if t, transient := injected.(*transientErr); transient {
			if t.remaining > 0 {
				t.remaining--
				return nil, t.err
			}
		} else {
			return nil, injected
		}
	}

	data, ok := f.objects[id]
	if !ok {
		return nil, &storage.NotFoundError{Bucket: ref.Bucket, Key: ref.Key}
	}
	return data, nil
}

func (f *Fake) GetFile(ctx context.Context, ref storage.ObjectRef, destPath string) error {
	f.mu.Lock()
	data, err := f.getLocked(ref)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (f *Fake) Put(ctx context.Context, bucket, key string, data []byte) error {
	f.Seed(bucket, key, data)
	return nil
}

var _ storage.ObjectStorage = (*Fake)(nil)

// NetworkErr builds a transient store error for injection.
func NetworkErr(op string) error {
	return &storage.NetworkError{Op: op, Err: fmt.Errorf("connection reset")}
}
