package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/resumestore/internal"
)

// claimsKey is the context key for verified token claims.
type claimsKey struct{}

// JWTConfig configures the JWT middleware.
type JWTConfig struct {
	Extractor internal.Extractor
	Leeway    time.Duration
	Issuer    string
}

// JWTOption configures JWTConfig.
type JWTOption func(*JWTConfig)

// WithJWTExtractor sets a custom token extractor chain.
func WithJWTExtractor(ext internal.Extractor) JWTOption {
	return func(cfg *JWTConfig) {
		cfg.Extractor = ext
	}
}

// WithJWTLeeway tolerates clock skew when checking exp and nbf.
func WithJWTLeeway(d time.Duration) JWTOption {
	return func(cfg *JWTConfig) {
		cfg.Leeway = d
	}
}

// WithJWTIssuer requires the iss claim to match.
func WithJWTIssuer(iss string) JWTOption {
	return func(cfg *JWTConfig) {
		cfg.Issuer = iss
	}
}

// JWT returns middleware that verifies an HS256 bearer token and stores its
// claims in the request context. Tokens must carry exp and a non-empty sub.
func JWT(secret []byte, opts ...JWTOption) Middleware {
	cfg := &JWTConfig{
		Extractor: internal.NewExtractor(internal.FromBearerToken()),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(parserOpts...)
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := GetRequestID(r.Context())

			raw, ok := cfg.Extractor.Extract(r)
			if !ok {
				internal.WriteError(w, r, nil, internal.ErrUnauthorized("missing authentication token"), reqID)
				return
			}

			claims := &jwt.RegisteredClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
				msg := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "token expired"
				}
				internal.WriteError(w, r, nil, internal.ErrUnauthorized(msg, internal.WithError(err)), reqID)
				return
			}
			if claims.Subject == "" {
				internal.WriteError(w, r, nil, internal.ErrUnauthorized("token has no subject"), reqID)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims returns the verified claims, or nil outside the JWT middleware.
func GetClaims(ctx context.Context) *jwt.RegisteredClaims {
	claims, _ := ctx.Value(claimsKey{}).(*jwt.RegisteredClaims)
	return claims
}

// Subject returns the verified sub claim, or "".
func Subject(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}

// SignToken issues an HS256 token for subject valid for ttl, with a random jti.
func SignToken(secret []byte, subject, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
