package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log *slog.Logger

// Init initializes the global logger based on environment
// Development: Text format with Debug level
// Production: JSON format with Info level
// A non-empty level ("debug", "info", "warn", "error") overrides the default.
// Errors are also sent to Sentry when a DSN is given.
func Init(isDev bool, level string, sentryDSN string) {
	var handlers []slog.Handler

	lvl := slog.LevelInfo
	if isDev {
		lvl = slog.LevelDebug
	}
	if parsed, ok := ParseLevel(level); ok {
		lvl = parsed
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if isDev {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, opts))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(os.Stdout, opts))
	}

	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			TracesSampleRate: 1.0,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)

	if sentryDSN != "" && len(handlers) == 1 {
		slog.Warn("sentry disabled: invalid SENTRY_DSN")
	}
}

// ParseLevel maps a level name to a slog level. ok is false for unknown names.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
