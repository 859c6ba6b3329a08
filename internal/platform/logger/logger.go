package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON to stdout so log
// shippers need no parsing configuration.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// NewNop returns a logger that discards everything. For tests.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
