// Package middlewares provides net/http middleware for the storage API.
//
// Every constructor returns a Middleware, so they plug straight into chi:
//
//	r := chi.NewRouter()
//	r.Use(
//	    middlewares.RequestID(),
//	    middlewares.AccessLog(log),
//	    middlewares.Recover(middlewares.WithRecoverLogger(log)),
//	    middlewares.CORS(middlewares.WithAllowOrigins(origins...)),
//	)
//
// # Request ID
//
// RequestID reuses X-Request-ID, X-Request-Id or X-Correlation-ID when the
// caller sends one and generates a ULID otherwise. Pass RequestIDExtractor to
// logger.New to get request_id on every log line.
//
// # Recover
//
// Recover logs the panic with its stack and answers 500 with the JSON error
// envelope. http.ErrAbortHandler is passed through.
//
// # JWT
//
// JWT verifies an HS256 bearer token and exposes its claims through
// GetClaims and Subject. The subject is the tenant that owns the files.
// SignToken issues tokens for local development and tests.
//
// # CORS
//
// CORS wraps github.com/go-chi/cors with defaults suited to a browser client
// sending bearer tokens.
//
// # Timeout
//
// Timeout bounds the request context so slow storage calls are abandoned.
package middlewares
