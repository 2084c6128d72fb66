// Package logger builds the application's slog.Logger.
//
// Logs go to stdout as JSON (or text) at the configured level. Context
// extractors add request-scoped attributes, such as the request ID, to every
// record logged with a context. When a Sentry DSN is configured, warnings and
// errors are also forwarded to Sentry; errors create issues.
//
// # Usage
//
//	log, err := logger.New(logger.Config{
//		Level:  "debug",
//		Format: logger.FormatText,
//		Sentry: logger.SentryConfig{DSN: os.Getenv("SENTRY_DSN")},
//	}, requestIDExtractor)
//	if err != nil {
//		return err
//	}
//	defer logger.Flush(2 * time.Second)
//
//	log.InfoContext(ctx, "file uploaded", slog.String("key", key))
//
// A ContextExtractor returns false when the context holds nothing to add:
//
//	func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
//		if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
//			return slog.String("request_id", id), true
//		}
//		return slog.Attr{}, false
//	}
//
// If Sentry initialization fails, the failure is logged and the logger keeps
// writing to stdout only.
//
// Libraries take a *slog.Logger through an option and default to NewNope.
package logger
