package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

func TestMemStoreBucketLifecycle(t *testing.T) {
	t.Parallel()

	mem := NewMemStore()
	ctx := context.Background()

	require.NoError(t, mem.CreateBucket(ctx, "bucket1"), "first create")
	require.ErrorIs(t, mem.CreateBucket(ctx, "bucket1"), ErrBucketExists, "second create")
}

func TestMemStoreObjectLifecycle(t *testing.T) {
	t.Parallel()

	mem := NewMemStore()
	ctx := context.Background()

	content := []byte("some bytes")
	require.NoError(t, mem.PutObject(ctx, "bucket1", "a.txt", "text/plain", int64(len(content)), bytes.NewReader(content)), "put")

	info, body, err := mem.GetObject(ctx, "bucket1", "a.txt")
	require.NoError(t, err, "get")
	defer body.Close()
	require.Equal(t, "text/plain", info.ContentType, "content type")

	got, err := io.ReadAll(body)
	require.NoError(t, err, "read body")
	require.Equal(t, content, got, "payload")

	require.NoError(t, mem.DeleteObject(ctx, "bucket1", "a.txt"), "delete")
	require.ErrorIs(t, mem.DeleteObject(ctx, "bucket1", "a.txt"), ErrNotFound, "delete again")

	_, _, err = mem.GetObject(ctx, "bucket1", "a.txt")
	require.ErrorIs(t, err, ErrNotFound, "get after delete")
}

func TestMemStoreRejectsLengthMismatch(t *testing.T) {
	t.Parallel()

	mem := NewMemStore()
	err := mem.PutObject(context.Background(), "bucket1", "a.txt", "text/plain", 99, bytes.NewReader([]byte("short")))
	require.Error(t, err, "mismatched declared length")
}

func TestMemStoreListObjects(t *testing.T) {
	t.Parallel()

	mem := NewMemStore()
	ctx := context.Background()

	for _, key := range []string{"c", "a", "b"} {
		require.NoError(t, mem.PutObject(ctx, "bucket1", key, "text/plain", 1, bytes.NewReader([]byte("x"))), "put %s", key)
	}

	keys, err := mem.ListObjects(ctx, "bucket1")
	require.NoError(t, err, "list")
	require.Equal(t, []string{"a", "b", "c"}, keys, "keys are returned sorted")

	keys, err = mem.ListObjects(ctx, "empty-bucket")
	require.NoError(t, err, "list empty")
	require.Empty(t, keys, "no keys in unknown bucket")
}

func TestTranslateError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no such key", err: minio.ErrorResponse{Code: "NoSuchKey"}, want: ErrNotFound},
		{name: "no such bucket", err: minio.ErrorResponse{Code: "NoSuchBucket"}, want: ErrNotFound},
		{name: "already exists", err: minio.ErrorResponse{Code: "BucketAlreadyExists"}, want: ErrBucketExists},
		{name: "already owned", err: minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou"}, want: ErrBucketExists},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, translateError(tc.err), tc.want, "translated error")
		})
	}

	transport := errors.New("connection refused")
	require.Equal(t, transport, translateError(transport), "unknown errors pass through")
}
