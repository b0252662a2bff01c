package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to stdout. The service name is
// attached to every record so API and worker logs can be told apart.
func New(service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level(),
	})
	return slog.New(handler).With("service", service)
}

func level() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
