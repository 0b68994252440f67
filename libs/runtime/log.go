package runtime

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns the process-wide JSON logger tagged with the service name.
// LOG_LEVEL (debug|info|warn|error) controls verbosity; default info.
func NewLogger(service string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", service)
}
