package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for the store error taxonomy. Typed errors below carry
// the offending bucket/key and unwrap to these, so callers can branch with
// errors.Is without string matching.
var (
	ErrCredentials  = errors.New("store credentials missing or rejected")
	ErrNotFound     = errors.New("object not found")
	ErrAccessDenied = errors.New("access denied")
	ErrNetwork      = errors.New("transient network failure")
)

// CredentialError conveys that no usable credentials are configured, or
// that the store rejected the configured ones outright.
type CredentialError struct {
	Reason string
}

func (e *CredentialError) Error() string {
	if e.Reason == "" {
		return ErrCredentials.Error()
	}
	return fmt.Sprintf("store credentials: %s", e.Reason)
}

func (e *CredentialError) Unwrap() error { return ErrCredentials }

// NotFoundError conveys that a specific object key does not exist.
type NotFoundError struct {
	Bucket string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("s3://%s/%s: not found", e.Bucket, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AccessDeniedError conveys that the store rejected the caller's privileges
// for a specific bucket or key.
type AccessDeniedError struct {
	Bucket string
	Key    string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("s3://%s/%s: access denied", e.Bucket, e.Key)
}

func (e *AccessDeniedError) Unwrap() error { return ErrAccessDenied }

// NetworkError wraps a transient transport failure. Unlike the other store
// errors it is retryable.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return ErrNetwork }

// IsNotFound reports whether err represents a missing remote object.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsAccessDenied reports whether err represents rejected privileges.
func IsAccessDenied(err error) bool { return errors.Is(err, ErrAccessDenied) }

// IsCredential reports whether err represents unusable credentials.
func IsCredential(err error) bool { return errors.Is(err, ErrCredentials) }

// IsRetryable reports whether err is a transient failure worth retrying.
func IsRetryable(err error) bool { return errors.Is(err, ErrNetwork) }
