package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/resumestore/internal"
	"github.com/dmitrymomot/resumestore/pkg/id"
	"github.com/dmitrymomot/resumestore/pkg/logger"
)

// Middleware wraps an http.Handler.
type Middleware = func(http.Handler) http.Handler

type requestIDKey struct{}

// maxRequestIDLength caps IDs accepted from clients. Longer values are
// replaced with a generated one so they cannot bloat every log line.
const maxRequestIDLength = 128

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string
	Headers        []string // checked in order
}

type RequestIDOption func(*RequestIDConfig)

func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.Headers = headers }
}

func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.Generator = gen }
}

func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.ResponseHeader = header }
}

// RequestID tags each request with an ID taken from the first matching
// request header, or a fresh ULID. The ID goes into the context and is
// echoed in the response header.
func RequestID(opts ...RequestIDOption) Middleware {
	cfg := &RequestIDConfig{
		Headers:        []string{"X-Request-ID", "X-Correlation-ID"},
		Generator:      id.NewULID,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	sources := make([]internal.ExtractorSource, 0, len(cfg.Headers))
	for _, h := range cfg.Headers {
		sources = append(sources, internal.FromHeader(h))
	}
	incoming := internal.NewExtractor(sources...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID, ok := incoming.Extract(r)
			if !ok || len(reqID) > maxRequestIDLength {
				reqID = cfg.Generator()
			}

			w.Header().Set(cfg.ResponseHeader, reqID)
			ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID returns the request ID stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds "request_id" to log records written with a
// request context. Pass it to logger.New.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v := GetRequestID(ctx)
		if v == "" {
			return slog.Attr{}, false
		}
		return slog.String("request_id", v), true
	}
}
