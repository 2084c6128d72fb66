package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/errgroup"
)

// deleteConcurrency bounds parallel DeleteObjects requests in DeleteByPrefix.
const deleteConcurrency = 4

// S3Storage implements Bucket using S3-compatible object storage.
type S3Storage struct {
	client *s3.Client
	cfg    Config
}

// New creates a new S3Storage with the given configuration.
// Static credentials are used when AccessKey is set; otherwise the default
// AWS credential chain is loaded.
func New(ctx context.Context, cfg Config) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	var client *s3.Client
	if cfg.AccessKey != "" {
		opts = append(opts, func(o *s3.Options) {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		})
		client = s3.New(s3.Options{}, opts...)
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("%w: load aws config: %v", ErrInvalidConfig, err)
		}
		client = s3.NewFromConfig(awsCfg, opts...)
	}

	return &S3Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// Name returns the bucket name.
func (s *S3Storage) Name() string {
	return s.cfg.Bucket
}

// Exists reports whether the bucket exists.
func (s *S3Storage) Exists(ctx context.Context) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.cfg.Bucket),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, wrapS3Error(err, ErrBucketCheckFailed)
}

// Create creates the bucket in the configured region.
func (s *S3Storage) Create(ctx context.Context) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(s.cfg.Bucket),
	}
	// us-east-1 rejects an explicit location constraint.
	if s.cfg.Region != DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.cfg.Region),
		}
	}

	_, err := s.client.CreateBucket(ctx, input)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if asAPIError(err, "BucketAlreadyOwnedByYou") || errors.As(err, &owned) {
			return nil
		}
		return wrapS3Error(err, ErrCreateBucketFailed)
	}

	return nil
}

// SetPolicy replaces the bucket policy.
func (s *S3Storage) SetPolicy(ctx context.Context, policy string) error {
	_, err := s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(s.cfg.Bucket),
		Policy: aws.String(policy),
	})
	if err != nil {
		return wrapS3Error(err, ErrPolicyFailed)
	}
	return nil
}

// Put uploads data from a reader to S3 under key, overwriting any existing object.
func (s *S3Storage) Put(ctx context.Context, key string, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	o := newPutOptions(opts...)

	contentType, body, err := prepareBody(r, o.contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: read input: %v", ErrUploadFailed, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if o.contentDisposition != "" {
		input.ContentDisposition = aws.String(o.contentDisposition)
	}
	if o.cacheControl != "" {
		input.CacheControl = aws.String(o.cacheControl)
	}
	switch o.acl {
	case ACLPublicRead:
		input.ACL = types.ObjectCannedACLPublicRead
	case ACLPrivate:
		input.ACL = types.ObjectCannedACLPrivate
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, wrapS3Error(err, ErrUploadFailed)
	}

	return &FileInfo{
		Key:                key,
		Size:               size,
		ContentType:        contentType,
		ContentDisposition: o.contentDisposition,
		CacheControl:       o.cacheControl,
		ACL:                o.acl,
	}, nil
}

// Get retrieves an object from S3.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrDownloadFailed)
	}
	return output.Body, nil
}

// Stat returns object metadata using HeadObject.
func (s *S3Storage) Stat(ctx context.Context, key string) (*FileInfo, error) {
	output, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, wrapS3Error(err, ErrDownloadFailed)
	}

	return &FileInfo{
		Key:                key,
		Size:               aws.ToInt64(output.ContentLength),
		ContentType:        aws.ToString(output.ContentType),
		ContentDisposition: aws.ToString(output.ContentDisposition),
		CacheControl:       aws.ToString(output.CacheControl),
	}, nil
}

// Delete removes an object from S3. S3 reports success for missing keys;
// S3-compatible stores that answer NoSuchKey are treated the same way.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if asAPIError(err, "NoSuchKey") {
			return nil
		}
		return wrapS3Error(err, ErrDeleteFailed)
	}

	return nil
}

// List returns all keys under prefix, following continuation tokens.
func (s *S3Storage) List(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapS3Error(err, ErrListFailed)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	return keys, nil
}

// DeleteByPrefix lists every key under prefix and removes them with batched
// DeleteObjects requests. Keys the store refuses to delete are reported as
// ErrDeleteFailed after all batches have run.
func (s *S3Storage) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	var deleted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)

	for _, batch := range chunk(keys, deleteBatchSize) {
		g.Go(func() error {
			n, err := s.deleteBatch(gctx, batch)
			deleted.Add(int64(n))
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return int(deleted.Load()), err
	}
	return int(deleted.Load()), nil
}

func (s *S3Storage) deleteBatch(ctx context.Context, keys []string) (int, error) {
	objects := make([]types.ObjectIdentifier, len(keys))
	for i, k := range keys {
		objects[i] = types.ObjectIdentifier{Key: aws.String(k)}
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.cfg.Bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return 0, wrapS3Error(err, ErrDeleteFailed)
	}

	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return len(keys) - len(out.Errors), fmt.Errorf("%w: %d of %d objects not deleted, first %s: %s",
			ErrDeleteFailed, len(out.Errors), len(keys), aws.ToString(first.Key), aws.ToString(first.Message))
	}

	return len(keys), nil
}

// chunk splits keys into consecutive slices of at most size elements.
func chunk(keys []string, size int) [][]string {
	batches := make([][]string, 0, (len(keys)+size-1)/size)
	for size < len(keys) {
		keys, batches = keys[size:], append(batches, keys[:size:size])
	}
	return append(batches, keys)
}

// asAPIError reports whether err carries the given smithy API error code.
func asAPIError(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}

// Ensure S3Storage implements Bucket.
var _ Bucket = (*S3Storage)(nil)
