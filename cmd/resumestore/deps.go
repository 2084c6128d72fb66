package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/resumestore/internal/config"
	"github.com/dmitrymomot/resumestore/middlewares"
	"github.com/dmitrymomot/resumestore/pkg/events"
	"github.com/dmitrymomot/resumestore/pkg/logger"
	"github.com/dmitrymomot/resumestore/pkg/storage"
	"github.com/dmitrymomot/resumestore/pkg/userfiles"
)

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	lc := cfg.Log
	if lc.Sentry.Release == "" {
		lc.Sentry.Release = "resumestore@" + version
	}
	log, err := logger.New(lc, middlewares.RequestIDExtractor())
	if err != nil {
		return nil, err
	}
	return log.With(slog.String("service", "resumestore"), slog.String("version", version)), nil
}

func newBucket(ctx context.Context, cfg config.StorageConfig) (storage.Bucket, error) {
	sc := storage.Config{
		Bucket:    cfg.Bucket,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		PathStyle: cfg.PathStyle,
	}

	switch cfg.Driver {
	case config.DriverS3:
		return storage.New(ctx, sc)
	case config.DriverMinio:
		return storage.NewMinio(sc)
	case config.DriverMemory:
		// Process-local: there is no external bucket to wait for.
		return storage.NewMemory(cfg.Bucket, storage.WithBucketCreated()), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalid, cfg.Driver)
	}
}

// newPublisher returns the AMQP publisher when a broker URL is configured.
// The returned publisher is nil otherwise.
func newPublisher(cfg config.EventsConfig) (*events.AMQPPublisher, error) {
	if cfg.AMQPURL == "" {
		return nil, nil
	}
	return events.DialAMQP(cfg.AMQPURL, cfg.Exchange)
}

func newFiles(cfg *config.Config, store storage.Bucket, log *slog.Logger, pub events.Publisher) (*userfiles.Service, error) {
	opts := []userfiles.Option{userfiles.WithLogger(log)}
	if cfg.Storage.CacheControl != "" {
		opts = append(opts, userfiles.WithCacheControl(cfg.Storage.CacheControl))
	}
	if acl, _ := storage.ParseACL(cfg.Storage.ObjectACL); acl != "" {
		opts = append(opts, userfiles.WithObjectACL(acl))
	}
	if pub != nil {
		opts = append(opts, userfiles.WithPublisher(pub))
	}

	return userfiles.New(userfiles.Config{
		Bucket:          cfg.Storage.Bucket,
		PublicURL:       cfg.Storage.PublicURL,
		SkipBucketCheck: cfg.Storage.SkipBucketCheck,
	}, store, opts...)
}
