package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig enables error reporting when DSN is set. Error records always
// become Sentry issues; warnings are shipped as Sentry logs unless
// ErrorsOnly is set.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	Release     string `env:"SENTRY_RELEASE"`
	ErrorsOnly  bool   `env:"SENTRY_ERRORS_ONLY"`
}

// LogLevels lists the record levels shipped as Sentry logs.
func (c SentryConfig) LogLevels() []slog.Level {
	if c.ErrorsOnly {
		return []slog.Level{slog.LevelError}
	}
	return []slog.Level{slog.LevelWarn, slog.LevelError}
}

func newSentryHandler(cfg SentryConfig) (slog.Handler, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	})
	if err != nil {
		return nil, err
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   cfg.LogLevels(),
	}.NewSentryHandler(context.Background()), nil
}

// Flush blocks until buffered Sentry events are sent or timeout passes.
// It is a no-op when Sentry was never initialized.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
