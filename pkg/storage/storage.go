package storage

import (
	"context"
	"fmt"
	"io"
)

// Bucket defines the object store operations used by the application.
// Implementations must be safe for concurrent use.
type Bucket interface {
	// Name returns the bucket name.
	Name() string

	// Exists reports whether the bucket exists and is reachable.
	Exists(ctx context.Context) (bool, error)

	// Create creates the bucket. Creating a bucket the caller already owns is not an error.
	Create(ctx context.Context) error

	// SetPolicy replaces the bucket policy with the given JSON document.
	SetPolicy(ctx context.Context, policy string) error

	// Put writes data from a reader to key, replacing any existing object.
	// The size parameter is used for the content-length header.
	Put(ctx context.Context, key string, r io.Reader, size int64, opts ...Option) (*FileInfo, error)

	// Get retrieves an object. The caller is responsible for closing the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Stat returns object metadata without downloading the content.
	Stat(ctx context.Context, key string) (*FileInfo, error)

	// Delete removes an object. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// List returns every key that starts with prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// DeleteByPrefix removes every object whose key starts with prefix
	// and returns the number of removed objects.
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string

	// AccessKey is the access key ID. When empty, credentials come from the
	// default AWS chain (environment, shared config, instance role).
	AccessKey string

	// SecretKey is the secret access key. Required when AccessKey is set.
	SecretKey string

	// Endpoint is the custom S3 endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string

	// Region is the AWS region (default: us-east-1).
	Region string

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool
}

// FileInfo contains metadata about a stored object.
type FileInfo struct {
	// Key is the storage key (path) for the object.
	Key string

	// ContentType is the stored Content-Type header.
	ContentType string

	// ContentDisposition is the stored Content-Disposition header, if any.
	ContentDisposition string

	// CacheControl is the stored Cache-Control header, if any.
	CacheControl string

	// Size is the object size in bytes.
	Size int64

	// ACL is the canned ACL sent with the upload; empty when none was set.
	// Only Put results and the memory driver report it.
	ACL ACL
}

// ACL represents canned access control levels for stored objects.
type ACL string

const (
	// ACLPrivate makes the object accessible only to the bucket owner.
	ACLPrivate ACL = "private"

	// ACLPublicRead makes the object publicly readable.
	ACLPublicRead ACL = "public-read"
)

// ParseACL accepts "", "private" and "public-read". The empty ACL leaves
// access to the bucket policy.
func ParseACL(s string) (ACL, error) {
	switch acl := ACL(s); acl {
	case "", ACLPrivate, ACLPublicRead:
		return acl, nil
	default:
		return "", fmt.Errorf("%w: unsupported object ACL %q", ErrInvalidConfig, s)
	}
}

// Default configuration values.
const (
	DefaultRegion = "us-east-1"

	// deleteBatchSize is the S3 DeleteObjects per-request limit.
	deleteBatchSize = 1000
)

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

// validate checks that required configuration fields are set.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return ErrInvalidConfig
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return ErrInvalidConfig
	}
	return nil
}
