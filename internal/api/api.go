// Package api exposes the user file policy over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/resumestore/middlewares"
	"github.com/dmitrymomot/resumestore/pkg/health"
	"github.com/dmitrymomot/resumestore/pkg/logger"
	"github.com/dmitrymomot/resumestore/pkg/userfiles"
)

const (
	defaultMaxUploadBytes = 10 << 20
	defaultMaxResumePages = 20

	// multipartOverhead is allowed on top of the file limit for form framing.
	multipartOverhead = 64 << 10
)

// Config holds the request limits and auth settings of the API.
type Config struct {
	JWTSecret      []byte
	CORSOrigins    []string
	MaxUploadBytes int64
	MaxResumePages int
	RequestTimeout time.Duration
}

// Handler serves the storage endpoints for the tenant named by the bearer token.
type Handler struct {
	files  *userfiles.Service
	cfg    Config
	logger *slog.Logger
	checks health.Checks
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithReadinessCheck adds a named dependency check to /health/ready.
func WithReadinessCheck(name string, fn health.CheckFunc) Option {
	return func(h *Handler) {
		if name != "" && fn != nil {
			h.checks[name] = fn
		}
	}
}

// New creates a Handler. The storage check is always part of readiness.
func New(files *userfiles.Service, cfg Config, opts ...Option) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.MaxResumePages <= 0 {
		cfg.MaxResumePages = defaultMaxResumePages
	}

	h := &Handler{
		files:  files,
		cfg:    cfg,
		logger: logger.NewNope(),
		checks: health.Checks{"storage": files.CheckBucket},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the HTTP routes.
//
//	GET    /health/live
//	GET    /health/ready
//	POST   /api/v1/storage/{category}
//	DELETE /api/v1/storage/{category}/{filename}
//	DELETE /api/v1/storage/{category}
//	DELETE /api/v1/storage
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	corsOpts := []middlewares.CORSOption{}
	if len(h.cfg.CORSOrigins) > 0 {
		corsOpts = append(corsOpts, middlewares.WithAllowOrigins(h.cfg.CORSOrigins...))
	}

	r.Use(
		middlewares.RequestID(),
		middlewares.AccessLog(h.logger),
		middlewares.Recover(middlewares.WithRecoverLogger(h.logger)),
		middlewares.CORS(corsOpts...),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.fail(w, r, errRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.fail(w, r, errMethodNotAllowed)
	})

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(h.checks, health.WithLogger(h.logger)))

	r.Route("/api/v1/storage", func(r chi.Router) {
		r.Use(
			middlewares.JWT(h.cfg.JWTSecret),
			middlewares.Timeout(h.cfg.RequestTimeout),
		)
		r.Post("/{category}", h.upload)
		r.Delete("/{category}/{filename}", h.deleteFile)
		r.Delete("/{category}", h.purgeCategory)
		r.Delete("/", h.purgeTenant)
	})

	return r
}
