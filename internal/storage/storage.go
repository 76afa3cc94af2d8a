package storage

import "context"

// ObjectRef identifies a single remote object.
type ObjectRef struct {
	Bucket string
	Key    string
}

// ObjectInfo represents metadata for a remote object.
type ObjectInfo struct {
	ObjectRef
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the pipeline needs.
// Implementations must return listings covering every page of results and map
// provider failures onto the package's error taxonomy.
type ObjectStorage interface {
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	Get(ctx context.Context, ref ObjectRef) ([]byte, error)
	GetFile(ctx context.Context, ref ObjectRef, destPath string) error
	Put(ctx context.Context, bucket, key string, data []byte) error
}
