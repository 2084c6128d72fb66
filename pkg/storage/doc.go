// Package storage provides S3-compatible bucket and object operations.
//
// The Bucket interface covers everything the application needs from an
// object store: bucket provisioning (existence check, creation, policy),
// object writes with explicit keys and HTTP metadata, reads, deletes and
// prefix-scoped listing and purging. S3Storage implements it on top of
// aws-sdk-go-v2; MemoryStorage is an in-process implementation for tests
// and local development.
//
// # Basic Usage
//
//	store, err := storage.New(ctx, storage.Config{
//		Bucket:    "resumes",
//		Endpoint:  "http://localhost:9000",
//		AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
//		SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
//		PathStyle: true,
//	})
//	if err != nil {
//		return err
//	}
//
//	info, err := store.Put(ctx, "user123/resumes/cv.pdf", bytes.NewReader(data), int64(len(data)),
//		storage.WithContentType("application/pdf"),
//		storage.WithContentDisposition("attachment; filename=cv.pdf"),
//	)
//
// # Purging
//
// DeleteByPrefix lists every key under a prefix and removes them in batches
// of up to 1000 keys, the S3 DeleteObjects limit:
//
//	n, err := store.DeleteByPrefix(ctx, "user123/")
//
// # Bucket Policy
//
// PublicReadPolicy renders an anonymous s3:GetObject policy limited to the
// given key patterns:
//
//	policy, _ := storage.PublicReadPolicy("resumes", "*/pictures/*", "*/resumes/*")
//	err := store.SetPolicy(ctx, policy)
//
// # Errors
//
// All failures wrap one of the package sentinels (ErrNotFound,
// ErrUploadFailed, ErrDeleteFailed, ...) so callers can branch with
// errors.Is without depending on AWS error types.
//
// # Configuration
//
//	type Config struct {
//		Bucket    string // STORAGE_BUCKET
//		AccessKey string // STORAGE_ACCESS_KEY (empty: default AWS credential chain)
//		SecretKey string // STORAGE_SECRET_KEY
//		Endpoint  string // STORAGE_ENDPOINT (MinIO or other S3-compatible services)
//		Region    string // STORAGE_REGION (default: us-east-1)
//		PathStyle bool   // STORAGE_PATH_STYLE (required for MinIO)
//	}
package storage
