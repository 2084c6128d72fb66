package logger

import (
	"io"
	"log/slog"
)

// NewNope returns a logger that discards everything. Packages use it as the
// default when no logger is injected.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
