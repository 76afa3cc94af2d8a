package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config encapsulates the connection info for an S3-compatible store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Client implements ObjectStorage on top of minio-go.
type Client struct {
	mc *minio.Client
}

// NewClient builds an object store client. Missing credentials are rejected
// up front with a CredentialError rather than surfacing later as a signed
// request failure.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("store endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, &CredentialError{Reason: "access key and secret key must be provided"}
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	secure := cfg.UseSSL || strings.HasPrefix(cfg.Endpoint, "https://")

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build store client: %w", err)
	}

	return &Client{mc: mc}, nil
}

// List returns every object under prefix. minio-go paginates the listing
// internally, so the returned slice covers all result pages.
func (c *Client) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	for obj := range c.mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, mapStoreError("list", bucket, prefix, obj.Err)
		}
		results = append(results, ObjectInfo{
			ObjectRef: ObjectRef{Bucket: bucket, Key: obj.Key},
			Size:      obj.Size,
		})
	}
	return results, nil
}

// Get downloads an object into memory.
func (c *Client) Get(ctx context.Context, ref ObjectRef) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, ref.Bucket, ref.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapStoreError("get", ref.Bucket, ref.Key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapStoreError("get", ref.Bucket, ref.Key, err)
	}
	return data, nil
}

// GetFile downloads an object to a local path.
func (c *Client) GetFile(ctx context.Context, ref ObjectRef, destPath string) error {
	if err := c.mc.FGetObject(ctx, ref.Bucket, ref.Key, destPath, minio.GetObjectOptions{}); err != nil {
		return mapStoreError("get", ref.Bucket, ref.Key, err)
	}
	return nil
}

// Put uploads data to the given bucket and key.
func (c *Client) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := c.mc.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return mapStoreError("put", bucket, key, err)
	}
	return nil
}

var _ ObjectStorage = (*Client)(nil)

// mapStoreError translates minio responses onto the package taxonomy.
// Anything without a recognized S3 error code is treated as transient.
func mapStoreError(op, bucket, key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return &NotFoundError{Bucket: bucket, Key: key}
	case "AccessDenied", "AllAccessDisabled":
		return &AccessDeniedError{Bucket: bucket, Key: key}
	case "InvalidAccessKeyId", "SignatureDoesNotMatch", "CredentialsNotSupported":
		return &CredentialError{Reason: err.Error()}
	case "":
		return &NetworkError{Op: op, Err: err}
	default:
		return fmt.Errorf("store %s s3://%s/%s: %w", op, bucket, key, err)
	}
}
