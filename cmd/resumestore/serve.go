package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/resumestore/internal/api"
	"github.com/dmitrymomot/resumestore/internal/server"
	"github.com/dmitrymomot/resumestore/pkg/events"
	"github.com/dmitrymomot/resumestore/pkg/logger"
)

const sentryFlushTimeout = 2 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var requestTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Provision the bucket and run the storage API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := cfg.RequireAuth(); err != nil {
				return err
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := newBucket(ctx, cfg.Storage)
			if err != nil {
				return err
			}

			pub, err := newPublisher(cfg.Events)
			if err != nil {
				return err
			}

			var publisher events.Publisher
			var apiOpts []api.Option
			runOpts := []server.Option{
				server.Address(cfg.HTTP.Addr),
				server.Logger(log),
				server.ShutdownTimeout(cfg.HTTP.ShutdownTimeout),
			}
			if pub != nil {
				publisher = pub
				apiOpts = append(apiOpts, api.WithReadinessCheck("events", pub.Healthcheck))
				runOpts = append(runOpts, server.ShutdownHook(func(context.Context) error {
					return pub.Close()
				}))
			}
			runOpts = append(runOpts, server.ShutdownHook(func(context.Context) error {
				logger.Flush(sentryFlushTimeout)
				return nil
			}))

			files, err := newFiles(cfg, store, log, publisher)
			if err != nil {
				return err
			}

			// Startup fails when the bucket cannot be provisioned.
			if err := files.Provision(ctx); err != nil {
				log.Error("storage provisioning failed", slog.Any("error", err))
				if pub != nil {
					_ = pub.Close()
				}
				return err
			}

			handler := api.New(files, api.Config{
				JWTSecret:      []byte(cfg.Auth.JWTSecret),
				CORSOrigins:    cfg.HTTP.CORSOrigins,
				MaxUploadBytes: cfg.Storage.MaxUploadBytes,
				MaxResumePages: cfg.Storage.MaxResumePages,
				RequestTimeout: requestTimeout,
			}, append(apiOpts, api.WithLogger(log))...)

			return server.Run(handler.Router(), append(runOpts, server.WithContext(ctx))...)
		},
	}

	cmd.Flags().DurationVar(&requestTimeout, "request-timeout", 30*time.Second, "deadline for storage calls made by one request")
	return cmd
}
