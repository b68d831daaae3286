package store

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrBucketExists is returned by CreateBucket when the bucket name is
	// already taken by this or another owner.
	ErrBucketExists = errors.New("bucket already exists")

	// ErrNotFound is returned when the requested bucket or object does not
	// exist in the backing store.
	ErrNotFound = errors.New("object not found")
)

// ObjectInfo describes an object held by the backing store.
type ObjectInfo struct {
	Key         string
	ContentType string
	Size        int64
}

// ObjectStore is the gateway's view of an S3-compatible object store. No
// business logic lives behind this interface; it exists so the transfer
// engine can be exercised against a substitute implementation.
type ObjectStore interface {
	// CreateBucket creates the named bucket, returning ErrBucketExists if
	// the name is already taken.
	CreateBucket(ctx context.Context, bucket string) error

	// PutObject writes size bytes from body under (bucket, key). The size
	// must be known up front; the write either lands completely or not at
	// all.
	PutObject(ctx context.Context, bucket string, key string, contentType string, size int64, body io.Reader) error

	// GetObject returns the object's metadata and a lazy stream over its
	// payload. The caller owns the stream and must close it. Returns
	// ErrNotFound if no such object exists.
	GetObject(ctx context.Context, bucket string, key string) (ObjectInfo, io.ReadCloser, error)

	// DeleteObject removes (bucket, key), returning ErrNotFound if the
	// object does not exist.
	DeleteObject(ctx context.Context, bucket string, key string) error

	// ListObjects enumerates all object keys in the bucket.
	ListObjects(ctx context.Context, bucket string) ([]string, error)

	// PresignGet issues a URL granting direct read access to (bucket, key)
	// for the given duration, usable by a generic HTTP client with no
	// further authentication.
	PresignGet(ctx context.Context, bucket string, key string, expiry time.Duration) (string, error)
}
