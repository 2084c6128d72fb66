package userfiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/resumestore/pkg/events"
	"github.com/dmitrymomot/resumestore/pkg/id"
	"github.com/dmitrymomot/resumestore/pkg/logger"
	"github.com/dmitrymomot/resumestore/pkg/storage"
)

// Config is the explicit configuration of a Service.
type Config struct {
	Bucket          string // bucket name, must match the store
	PublicURL       string // base URL objects are served from
	SkipBucketCheck bool   // bypass provisioning
}

func (c Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.PublicURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: public url must be an absolute http(s) url, got %q", ErrInvalidConfig, c.PublicURL)
	}
	return nil
}

// Result describes a stored object.
type Result struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Service applies the naming and lifecycle rules for user files on top of a
// storage.Bucket.
type Service struct {
	store        storage.Bucket
	events       events.Publisher
	logger       *slog.Logger
	newID        func() string
	cfg          Config
	cacheControl string
	objectACL    storage.ACL
}

// New creates a Service. The store must be bound to cfg.Bucket.
func New(cfg Config, store storage.Bucket, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if store.Name() != cfg.Bucket {
		return nil, fmt.Errorf("%w: store is bound to bucket %q, want %q", ErrInvalidConfig, store.Name(), cfg.Bucket)
	}

	s := &Service{
		store:  store,
		cfg:    cfg,
		events: events.Nop{},
		logger: logger.NewNope(),
		newID:  defaultIDGenerator,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "userfiles"), slog.String("bucket", cfg.Bucket))
	return s, nil
}

// Provision makes sure the bucket exists and is publicly readable under the
// category paths. Call it once at startup before accepting uploads.
// A missing bucket is created and the public-read policy attached; an
// existing bucket is not modified.
func (s *Service) Provision(ctx context.Context) error {
	if s.cfg.SkipBucketCheck {
		s.logger.WarnContext(ctx, "skipping verification of whether the storage bucket exists")
		s.logger.WarnContext(ctx, "make sure the category paths are publicly readable",
			slog.String("paths", "/{pictures,previews,resumes}/*"),
		)
		return nil
	}

	exists, err := s.store.Exists(ctx)
	if err != nil {
		return newError(ErrProvisioningFailed, s.cfg.Bucket, err)
	}
	if exists {
		s.logger.InfoContext(ctx, "connected to storage bucket")
		return nil
	}

	policy, err := storage.PublicReadPolicy(s.cfg.Bucket, PublicPatterns()...)
	if err != nil {
		return newError(ErrProvisioningFailed, s.cfg.Bucket, err)
	}
	if err := s.store.Create(ctx); err != nil {
		return newError(ErrProvisioningFailed, s.cfg.Bucket, err)
	}
	if err := s.store.SetPolicy(ctx, policy); err != nil {
		return newError(ErrProvisioningFailed, s.cfg.Bucket, err)
	}

	s.logger.InfoContext(ctx, "storage bucket created and public read policy applied")
	return nil
}

// CheckBucket reports an error unless the bucket exists. Used by readiness
// probes, which print the error as-is, so store errors are returned
// unwrapped rather than as *Error; nothing failed on a tenant's behalf.
func (s *Service) CheckBucket(ctx context.Context) error {
	exists, err := s.store.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", storage.ErrBucketNotFound, s.cfg.Bucket)
	}
	return nil
}

// DeriveKey returns the storage key for a file. Deterministic for filenames
// that normalize to a non-empty slug; otherwise a fresh identifier is used
// and every call yields a different key.
func (s *Service) DeriveKey(tenantID string, c Category, filename string) (string, error) {
	key, _, err := s.deriveKey(tenantID, c, filename)
	return key, err
}

func (s *Service) deriveKey(tenantID string, c Category, filename string) (key, name string, err error) {
	if err := validateTenant(tenantID); err != nil {
		return "", "", err
	}
	if err := validateCategory(c); err != nil {
		return "", "", err
	}
	name = NormalizeFilename(filename)
	if name == "" {
		name = s.newID()
	}
	return ObjectKey(tenantID, c, name), name, nil
}

// URL returns the public URL of key.
func (s *Service) URL(key string) string {
	return PublicURL(s.cfg.PublicURL, key)
}

// Upload stores data for a tenant, replacing any object at the same key,
// and returns where it can be read. An empty filename gets a generated name.
func (s *Service) Upload(ctx context.Context, tenantID string, c Category, data []byte, filename string) (*Result, error) {
	key, name, err := s.deriveKey(tenantID, c, filename)
	if err != nil {
		return nil, err
	}

	out, err := Transform(data, c)
	if err != nil {
		return nil, newError(ErrUploadFailed, key, err)
	}

	md := SelectMetadata(c, name)
	opts := md.putOptions()
	if s.cacheControl != "" {
		opts = append(opts, storage.WithCacheControl(s.cacheControl))
	}
	if s.objectACL != "" {
		opts = append(opts, storage.WithACL(s.objectACL))
	}

	info, err := s.store.Put(ctx, key, bytes.NewReader(out), int64(len(out)), opts...)
	if err != nil {
		return nil, newError(ErrUploadFailed, key, err)
	}

	s.logger.DebugContext(ctx, "file uploaded",
		slog.String("key", key),
		slog.Int64("size", info.Size),
	)

	res := &Result{
		Key:         key,
		URL:         s.URL(key),
		ContentType: md.ContentType,
		Size:        info.Size,
	}
	s.publish(ctx, events.Event{
		Type:        events.TypeFileUploaded,
		TenantID:    tenantID,
		Category:    string(c),
		Key:         res.Key,
		URL:         res.URL,
		ContentType: res.ContentType,
		Size:        res.Size,
	})
	return res, nil
}

// Delete removes one file. The key is derived from the same inputs used for
// Upload. Deleting a file that does not exist is not an error.
func (s *Service) Delete(ctx context.Context, tenantID string, c Category, filename string) error {
	if err := validateTenant(tenantID); err != nil {
		return err
	}
	if err := validateCategory(c); err != nil {
		return err
	}
	name := NormalizeFilename(filename)
	if name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	key := ObjectKey(tenantID, c, name)
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return newError(ErrDeleteFailed, key, err)
	}

	s.logger.DebugContext(ctx, "file deleted", slog.String("key", key))
	s.publish(ctx, events.Event{
		Type:     events.TypeFileDeleted,
		TenantID: tenantID,
		Category: string(c),
		Key:      key,
	})
	return nil
}

// DeleteByPrefix removes every object whose key starts with prefix and
// returns how many were removed. Zero matches is not an error. An empty
// prefix is rejected so the whole bucket is never purged by accident.
func (s *Service) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	if strings.TrimLeft(prefix, "/ ") == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}

	n, err := s.store.DeleteByPrefix(ctx, prefix)
	if err != nil {
		return n, newError(ErrFolderDeleteFailed, s.cfg.Bucket+"/"+prefix, err)
	}

	s.logger.InfoContext(ctx, "folder deleted",
		slog.String("prefix", prefix),
		slog.Int("deleted", n),
	)
	s.publish(ctx, events.Event{
		Type:    events.TypeFolderDeleted,
		Prefix:  prefix,
		Deleted: n,
	})
	return n, nil
}

// PurgeTenant removes all files of a tenant.
func (s *Service) PurgeTenant(ctx context.Context, tenantID string) (int, error) {
	if err := validateTenant(tenantID); err != nil {
		return 0, err
	}
	return s.DeleteByPrefix(ctx, TenantPrefix(tenantID))
}

// PurgeCategory removes all files of a tenant in one category.
func (s *Service) PurgeCategory(ctx context.Context, tenantID string, c Category) (int, error) {
	if err := validateTenant(tenantID); err != nil {
		return 0, err
	}
	if err := validateCategory(c); err != nil {
		return 0, err
	}
	return s.DeleteByPrefix(ctx, CategoryPrefix(tenantID, c))
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	ev.ID = id.NewULID()
	ev.Bucket = s.cfg.Bucket
	ev.OccurredAt = time.Now().UTC()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to publish storage event",
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
	}
}
