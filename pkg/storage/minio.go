package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage implements Bucket with the MinIO client. It suits self-hosted
// MinIO deployments where the AWS credential chain is not available.
type MinioStorage struct {
	client *minio.Client
	cfg    Config
}

// NewMinio creates a MinioStorage. cfg.Endpoint is required and may carry a
// scheme ("https://minio.internal:9000"); https enables TLS.
func NewMinio(cfg Config) (*MinioStorage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" || cfg.AccessKey == "" {
		return nil, fmt.Errorf("%w: minio needs an endpoint and static credentials", ErrInvalidConfig)
	}

	host, secure, err := splitEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	lookup := minio.BucketLookupAuto
	if cfg.PathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &MinioStorage{client: client, cfg: cfg}, nil
}

func splitEndpoint(endpoint string) (host string, secure bool, err error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		// Bare "host:port".
		return endpoint, false, nil
	}
	switch u.Scheme {
	case "http":
		return u.Host, false, nil
	case "https":
		return u.Host, true, nil
	default:
		return "", false, fmt.Errorf("%w: unsupported endpoint scheme %q", ErrInvalidConfig, u.Scheme)
	}
}

// Name returns the bucket name.
func (m *MinioStorage) Name() string {
	return m.cfg.Bucket
}

// Exists reports whether the bucket exists.
func (m *MinioStorage) Exists(ctx context.Context) (bool, error) {
	ok, err := m.client.BucketExists(ctx, m.cfg.Bucket)
	if err != nil {
		return false, wrapMinioError(err, ErrBucketCheckFailed)
	}
	return ok, nil
}

// Create creates the bucket. A bucket already owned by the caller is not an error.
func (m *MinioStorage) Create(ctx context.Context) error {
	err := m.client.MakeBucket(ctx, m.cfg.Bucket, minio.MakeBucketOptions{Region: m.cfg.Region})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return wrapMinioError(err, ErrCreateBucketFailed)
	}
	return nil
}

// SetPolicy replaces the bucket policy.
func (m *MinioStorage) SetPolicy(ctx context.Context, policy string) error {
	if err := m.client.SetBucketPolicy(ctx, m.cfg.Bucket, policy); err != nil {
		return wrapMinioError(err, ErrPolicyFailed)
	}
	return nil
}

// Put uploads r under key, overwriting any existing object.
func (m *MinioStorage) Put(ctx context.Context, key string, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	o := newPutOptions(opts...)

	contentType, body, err := prepareBody(r, o.contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: read input: %v", ErrUploadFailed, err)
	}

	put := minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: o.contentDisposition,
		CacheControl:       o.cacheControl,
	}
	if o.acl != "" {
		put.UserMetadata = map[string]string{"x-amz-acl": string(o.acl)}
	}

	info, err := m.client.PutObject(ctx, m.cfg.Bucket, key, body, size, put)
	if err != nil {
		return nil, wrapMinioError(err, ErrUploadFailed)
	}

	return &FileInfo{
		Key:                key,
		Size:               info.Size,
		ContentType:        contentType,
		ContentDisposition: o.contentDisposition,
		CacheControl:       o.cacheControl,
		ACL:                o.acl,
	}, nil
}

// Get returns the object content. Missing keys are reported before any read.
func (m *MinioStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapMinioError(err, ErrDownloadFailed)
	}
	// GetObject is lazy; Stat forces the request so errors surface here.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, wrapMinioError(err, ErrDownloadFailed)
	}
	return obj, nil
}

// Stat returns object metadata.
func (m *MinioStorage) Stat(ctx context.Context, key string) (*FileInfo, error) {
	info, err := m.client.StatObject(ctx, m.cfg.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, wrapMinioError(err, ErrDownloadFailed)
	}
	return &FileInfo{
		Key:                key,
		Size:               info.Size,
		ContentType:        info.ContentType,
		ContentDisposition: info.Metadata.Get("Content-Disposition"),
		CacheControl:       info.Metadata.Get("Cache-Control"),
	}, nil
}

// Delete removes key. Missing keys are ignored.
func (m *MinioStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	err := m.client.RemoveObject(ctx, m.cfg.Bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return wrapMinioError(err, ErrDeleteFailed)
	}
	return nil
}

// List returns all keys under prefix.
func (m *MinioStorage) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range m.client.ListObjects(ctx, m.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, wrapMinioError(obj.Err, ErrListFailed)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// DeleteByPrefix streams the listing into RemoveObjects, which batches
// multi-object deletes on its own.
func (m *MinioStorage) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		listErr error
		listed  int
	)
	objects := make(chan minio.ObjectInfo)
	go func() {
		defer close(objects)
		for obj := range m.client.ListObjects(ctx, m.cfg.Bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if obj.Err != nil {
				listErr = obj.Err
				return
			}
			select {
			case objects <- obj:
				listed++
			case <-ctx.Done():
				return
			}
		}
	}()

	var failed []minio.RemoveObjectError
	for rerr := range m.client.RemoveObjects(ctx, m.cfg.Bucket, objects, minio.RemoveObjectsOptions{}) {
		failed = append(failed, rerr)
	}

	// RemoveObjects drains objects before closing its result channel, so
	// listErr and listed are settled here.
	deleted := listed - len(failed)
	if listErr != nil {
		return deleted, wrapMinioError(listErr, ErrListFailed)
	}
	if len(failed) > 0 {
		return deleted, fmt.Errorf("%w: %d of %d objects not deleted, first %s: %v",
			ErrDeleteFailed, len(failed), listed, failed[0].ObjectName, failed[0].Err)
	}
	return deleted, nil
}

// wrapMinioError maps MinIO error responses onto the package sentinels.
func wrapMinioError(err error, fallback error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey":
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case resp.Code == "NoSuchBucket":
		return fmt.Errorf("%w: %v", ErrBucketNotFound, err)
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}

// Ensure MinioStorage implements Bucket.
var _ Bucket = (*MinioStorage)(nil)
