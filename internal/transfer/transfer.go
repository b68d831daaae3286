// Package transfer bridges protocol-level byte streams and the object
// store's call shape: multipart request bodies on the way in, store read
// streams on the way out.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
	"time"

	"github.com/sosodev/duration"
	"golang.org/x/sync/errgroup"

	"gluon/internal/store"
)

const (
	// FileFieldName is the multipart form field carrying uploaded files.
	FileFieldName = "file"

	// DefaultContentType is used when a part declares no content type.
	DefaultContentType = "application/octet-stream"

	// DefaultLinkExpiry is the presigned URL lifetime when the caller does
	// not supply a duration.
	DefaultLinkExpiry = 10 * time.Minute
)

// bufferPool recycles the join buffers used to materialize upload parts.
// Every buffer taken from the pool is returned exactly once, on whichever
// path observes the end of the part's store write.
var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Engine converts between client-facing streams and store operations. It is
// stateless and shared across all concurrent requests.
type Engine struct {
	store store.ObjectStore
}

// NewEngine returns an Engine writing to the given store.
func NewEngine(s store.ObjectStore) *Engine {
	return &Engine{store: s}
}

// UploadParts consumes a multipart body and writes every part named "file"
// to the bucket under the part's filename. Parts are read off the wire
// sequentially (a multipart body is one stream) but their store writes run
// concurrently and complete in any order; the call returns only after every
// write has finished. If any part fails the whole upload is reported as
// failed.
//
// Each part is joined into a single contiguous buffer before its write
// begins, because the store requires a declared content length. This bounds
// per-upload memory to the largest single part.
func (e *Engine) UploadParts(ctx context.Context, bucket string, parts *multipart.Reader) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)

	var (
		mu        sync.Mutex
		filenames []string
	)

	var readErr error
	for {
		part, err := parts.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("read multipart body: %w", err)
			break
		}

		if part.FormName() != FileFieldName {
			_ = part.Close()
			continue
		}

		filename := part.FileName()
		contentType := part.Header.Get("Content-Type")
		if contentType == "" {
			contentType = DefaultContentType
		}

		// The part stream is only valid until the next NextPart call, so
		// the join happens here; only the store write is handed off.
		buf := bufferPool.Get().(*bytes.Buffer)
		buf.Reset()

		_, err = io.Copy(buf, part)
		_ = part.Close()
		if err != nil {
			bufferPool.Put(buf)
			readErr = fmt.Errorf("read part %q: %w", filename, err)
			break
		}

		g.Go(func() error {
			defer bufferPool.Put(buf)

			size := int64(buf.Len())
			if err := e.store.PutObject(ctx, bucket, filename, contentType, size, bytes.NewReader(buf.Bytes())); err != nil {
				return fmt.Errorf("upload %q: %w", filename, err)
			}

			mu.Lock()
			filenames = append(filenames, filename)
			mu.Unlock()
			return nil
		})
	}

	// Always join in-flight writes, even when the body read failed; the
	// errgroup context cancels them on first error.
	waitErr := g.Wait()
	if readErr != nil {
		return nil, readErr
	}
	if waitErr != nil {
		return nil, waitErr
	}

	return filenames, nil
}

// Download fetches (bucket, key) and hands back the store's own stream
// untouched; the caller copies it to its destination and must close it. The
// object is never fully buffered here because object sizes are not bounded
// the way a single multipart part is.
func (e *Engine) Download(ctx context.Context, bucket string, key string) (store.ObjectInfo, io.ReadCloser, error) {
	return e.store.GetObject(ctx, bucket, key)
}

// PresignGet issues a presigned GET URL for (bucket, key). rawDuration is an
// ISO-8601 duration string such as "PT10M"; when empty the default expiry
// applies. An unparseable or non-positive duration fails fast.
func (e *Engine) PresignGet(ctx context.Context, bucket string, key string, rawDuration string) (string, error) {
	expiry := DefaultLinkExpiry

	if rawDuration != "" {
		d, err := duration.Parse(rawDuration)
		if err != nil {
			return "", fmt.Errorf("parse duration %q: %w", rawDuration, err)
		}
		expiry = d.ToTimeDuration()
		if expiry <= 0 {
			return "", fmt.Errorf("duration %q is not positive", rawDuration)
		}
	}

	return e.store.PresignGet(ctx, bucket, key, expiry)
}
