package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the process-wide structured logger. level selects the minimum
// severity ("debug", "info", "warn", "error"; unrecognized or empty values
// default to "info"). format selects the handler ("text" or "json";
// unrecognized or empty values default to "text"). Both are matched
// case-insensitively since they typically arrive verbatim from a YAML
// config file or an environment variable.
func New(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
