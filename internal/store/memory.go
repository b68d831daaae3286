package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"
)

// compile-time check that MemStore satisfies ObjectStore.
var _ ObjectStore = (*MemStore)(nil)

type memObject struct {
	contentType string
	data        []byte
}

// MemStore is an in-memory ObjectStore used as a stand-in for a real
// endpoint in tests. It honors the same typed-error contract as MinioStore.
type MemStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]memObject

	// PutDelay, when set, is slept before each write. Tests use it to widen
	// the window in which concurrent part writes overlap.
	PutDelay time.Duration

	// FailPut, when set, makes every PutObject call return this error.
	FailPut error
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{buckets: make(map[string]map[string]memObject)}
}

func (s *MemStore) CreateBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[bucket]; ok {
		return ErrBucketExists
	}
	s.buckets[bucket] = make(map[string]memObject)
	return nil
}

func (s *MemStore) PutObject(ctx context.Context, bucket string, key string, contentType string, size int64, body io.Reader) error {
	if s.PutDelay > 0 {
		select {
		case <-time.After(s.PutDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if s.FailPut != nil {
		return s.FailPut
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("declared length %d does not match body length %d", size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		objects = make(map[string]memObject)
		s.buckets[bucket] = objects
	}
	objects[key] = memObject{contentType: contentType, data: data}
	return nil
}

func (s *MemStore) GetObject(ctx context.Context, bucket string, key string) (ObjectInfo, io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.buckets[bucket][key]
	if !ok {
		return ObjectInfo{}, nil, ErrNotFound
	}

	info := ObjectInfo{
		Key:         key,
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}
	return info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *MemStore) DeleteObject(ctx context.Context, bucket string, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[bucket][key]; !ok {
		return ErrNotFound
	}
	delete(s.buckets[bucket], key)
	return nil
}

func (s *MemStore) ListObjects(ctx context.Context, bucket string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.buckets[bucket]))
	for key := range s.buckets[bucket] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemStore) PresignGet(ctx context.Context, bucket string, key string, expiry time.Duration) (string, error) {
	// Signing is local in S3; the object does not have to exist. Mimic the
	// shape of a sigv4 presigned URL closely enough for callers to inspect
	// the signed expiry.
	q := url.Values{}
	q.Set("X-Amz-Expires", strconv.Itoa(int(expiry.Seconds())))
	u := url.URL{
		Scheme:   "http",
		Host:     "memstore.local",
		Path:     "/" + bucket + "/" + key,
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}
