package observability

import (
	"io"
	"log/slog"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/couchcryptid/flight-wx-triggers/internal/config"
)

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT and sets
// it as the slog default. When LOG_FILE is set, output goes to a size-rotated
// file instead of stdout.
func NewLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFile == "" {
		return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    64, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
	logger := slog.New(newHandler(rotating, cfg.LogLevel, cfg.LogFormat))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
