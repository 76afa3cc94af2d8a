package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// RemotePath addresses a directory-style prefix inside a bucket, parsed
// from an "s3://bucket-name/prefix/" style URL. The bucket is the first
// path segment; everything after is the prefix.
type RemotePath struct {
	Bucket string
	Prefix string
}

// ParseRemotePath splits a remote URL into bucket and prefix. The scheme is
// not interpreted beyond requiring one, so "s3://" and "store://" both work.
func ParseRemotePath(raw string) (RemotePath, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return RemotePath{}, fmt.Errorf("invalid remote path %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return RemotePath{}, fmt.Errorf("invalid remote path %q: expected scheme://bucket/prefix/", raw)
	}

	return RemotePath{
		Bucket: u.Host,
		Prefix: strings.TrimPrefix(u.Path, "/"),
	}, nil
}

// DirPrefix returns the prefix with a trailing slash, so listings never
// match sibling prefixes that merely share a leading substring.
func (p RemotePath) DirPrefix() string {
	if p.Prefix == "" || strings.HasSuffix(p.Prefix, "/") {
		return p.Prefix
	}
	return p.Prefix + "/"
}

func (p RemotePath) String() string {
	return fmt.Sprintf("s3://%s/%s", p.Bucket, p.Prefix)
}
