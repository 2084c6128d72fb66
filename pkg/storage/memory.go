package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
)

// memObject holds a stored object with its HTTP metadata.
type memObject struct {
	contentType        string
	contentDisposition string
	cacheControl       string
	acl                ACL
	data               []byte
}

// MemoryStorage is an in-process Bucket. Objects live in a map guarded by a
// mutex; every read returns a copy, so callers cannot mutate stored data.
//
// The bucket starts out missing unless WithBucketCreated is passed, which
// lets provisioning code be exercised exactly as against S3.
type MemoryStorage struct {
	objects map[string]memObject
	policy  string
	name    string
	mu      sync.RWMutex
	exists  bool
}

// MemoryOption configures MemoryStorage.
type MemoryOption func(*MemoryStorage)

// WithBucketCreated marks the bucket as already existing.
func WithBucketCreated() MemoryOption {
	return func(m *MemoryStorage) {
		m.exists = true
	}
}

// NewMemory creates an in-memory bucket with the given name.
//
// Example:
//
//	store := storage.NewMemory("resumes", storage.WithBucketCreated())
func NewMemory(name string, opts ...MemoryOption) *MemoryStorage {
	m := &MemoryStorage{
		name:    name,
		objects: make(map[string]memObject),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the bucket name.
func (m *MemoryStorage) Name() string {
	return m.name
}

// Exists reports whether Create has been called (or the bucket was pre-created).
func (m *MemoryStorage) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrBucketCheckFailed, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exists, nil
}

// Create marks the bucket as existing.
func (m *MemoryStorage) Create(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCreateBucketFailed, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exists = true
	return nil
}

// SetPolicy stores the policy document.
func (m *MemoryStorage) SetPolicy(ctx context.Context, policy string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPolicyFailed, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, m.name)
	}
	m.policy = policy
	return nil
}

// Policy returns the last policy set on the bucket.
func (m *MemoryStorage) Policy() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.policy
}

// Put stores the reader content under key, replacing any existing object.
func (m *MemoryStorage) Put(ctx context.Context, key string, r io.Reader, _ int64, opts ...Option) (*FileInfo, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	o := newPutOptions(opts...)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read input: %v", ErrUploadFailed, err)
	}

	contentType := o.contentType
	if contentType == "" {
		contentType = DetectContentType(data)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, m.name)
	}
	m.objects[key] = memObject{
		data:               data,
		contentType:        contentType,
		contentDisposition: o.contentDisposition,
		cacheControl:       o.cacheControl,
		acl:                o.acl,
	}

	return &FileInfo{
		Key:                key,
		Size:               int64(len(data)),
		ContentType:        contentType,
		ContentDisposition: o.contentDisposition,
		CacheControl:       o.cacheControl,
		ACL:                o.acl,
	}, nil
}

// Get returns a reader over a copy of the stored object.
func (m *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(slices.Clone(obj.data))), nil
}

// Stat returns metadata for a stored object.
func (m *MemoryStorage) Stat(ctx context.Context, key string) (*FileInfo, error) {
	obj, err := m.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	return &FileInfo{
		Key:                key,
		Size:               int64(len(obj.data)),
		ContentType:        obj.contentType,
		ContentDisposition: obj.contentDisposition,
		CacheControl:       obj.cacheControl,
		ACL:                obj.acl,
	}, nil
}

func (m *MemoryStorage) lookup(ctx context.Context, key string) (memObject, error) {
	if err := ctx.Err(); err != nil {
		return memObject{}, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.exists {
		return memObject{}, fmt.Errorf("%w: %s", ErrBucketNotFound, m.name)
	}
	obj, ok := m.objects[key]
	if !ok {
		return memObject{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return obj, nil
}

// Delete removes key. Missing keys are ignored.
func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, m.name)
	}
	delete(m.objects, key)
	return nil
}

// List returns the sorted keys under prefix.
func (m *MemoryStorage) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListFailed, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.exists {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, m.name)
	}
	return m.keysLocked(prefix), nil
}

// DeleteByPrefix removes all keys under prefix in one critical section.
func (m *MemoryStorage) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return 0, fmt.Errorf("%w: %s", ErrBucketNotFound, m.name)
	}
	keys := m.keysLocked(prefix)
	for _, k := range keys {
		delete(m.objects, k)
	}
	return len(keys), nil
}

func (m *MemoryStorage) keysLocked(prefix string) []string {
	keys := make([]string, 0)
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Ensure MemoryStorage implements Bucket.
var _ Bucket = (*MemoryStorage)(nil)
