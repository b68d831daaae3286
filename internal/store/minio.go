package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// compile-time check that MinioStore satisfies ObjectStore.
var _ ObjectStore = (*MinioStore)(nil)

// MinioStore is a thin pass-through to a MinIO (or any S3-compatible)
// endpoint via the minio-go SDK. It is stateless and safe for use by any
// number of concurrent requests.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore connects to the given endpoint using static credentials.
func NewMinioStore(endpoint string, accessKey string, secretKey string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{client: client}, nil
}

// NewMinioStoreFromClient wraps an existing client, mostly useful in tests.
func NewMinioStoreFromClient(client *minio.Client) *MinioStore {
	return &MinioStore{client: client}
}

func (s *MinioStore) CreateBucket(ctx context.Context, bucket string) error {
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return translateError(err)
	}
	return nil
}

func (s *MinioStore) PutObject(ctx context.Context, bucket string, key string, contentType string, size int64, body io.Reader) error {
	_, err := s.client.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q/%q: %w", bucket, key, translateError(err))
	}
	return nil
}

func (s *MinioStore) GetObject(ctx context.Context, bucket string, key string) (ObjectInfo, io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return ObjectInfo{}, nil, translateError(err)
	}

	// GetObject is lazy; Stat forces the initial request so that a missing
	// object is reported here rather than on the first read of the stream.
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return ObjectInfo{}, nil, translateError(err)
	}

	info := ObjectInfo{
		Key:         key,
		ContentType: stat.ContentType,
		Size:        stat.Size,
	}

	return info, obj, nil
}

func (s *MinioStore) DeleteObject(ctx context.Context, bucket string, key string) error {
	// RemoveObject on a missing key is a silent no-op in S3 semantics, so
	// probe first and surface ErrNotFound explicitly.
	if _, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		return translateError(err)
	}

	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q/%q: %w", bucket, key, translateError(err))
	}
	return nil
}

func (s *MinioStore) ListObjects(ctx context.Context, bucket string) ([]string, error) {
	keys := make([]string, 0)
	for objectInfo := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if objectInfo.Err != nil {
			return nil, fmt.Errorf("list objects in %q: %w", bucket, translateError(objectInfo.Err))
		}
		keys = append(keys, objectInfo.Key)
	}
	return keys, nil
}

func (s *MinioStore) PresignGet(ctx context.Context, bucket string, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %q/%q: %w", bucket, key, translateError(err))
	}
	return u.String(), nil
}

// translateError maps minio SDK errors onto the store package's typed
// sentinels; anything unrecognized passes through as a transport error.
func translateError(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotFound
	case "BucketAlreadyExists", "BucketAlreadyOwnedByYou":
		return ErrBucketExists
	}
	return err
}
