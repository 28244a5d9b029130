// Package logging configures log/slog for the server and CLI.
//
// Request-scoped loggers pick up the request id set by chi's RequestID
// middleware, so every entry written while serving one request can be
// correlated. Widget-scoped loggers carry the widget id instead, because a
// widget's sorter keeps logging long after the request that loaded it.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the default logger writing to stdout.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// The server calls it once at startup with the configured level and format:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger without installing it. Level and format accept the
// same values as [Setup].
//
// The CLI uses it to log to stderr so stdout stays free for rendered HTML:
//
//	log := logging.New(stderr, "debug", "text")
//	s, err := sorter.New(doc, selector, sorter.Options{Logger: log})
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel maps a level name to a slog.Level, defaulting to info.
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

// FromContext returns the default logger, with request_id added when ctx
// carries a chi request id. Without one it is slog.Default() unchanged.
//
// Usage:
//
//	func (s *Server) handleTableView(w http.ResponseWriter, r *http.Request) {
//	    log := logging.FromContext(r.Context())
//	    log.Debug("rendering widget", "id", chi.URLParam(r, "id"))
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	return logger
}

// WithFields returns FromContext(ctx) with extra attributes. Use it for a
// multi-step operation whose entries should share the same fields.
//
// Usage:
//
//	log := logging.WithFields(ctx,
//	    "widget_id", id,
//	    "name", req.Name,
//	)
//	log.Info("widget loaded", "rows", info.Rows)
//	// ... later ...
//	log.Info("sorted", "column", col)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

// ForWidget returns the logger a widget's sorter writes to. It is not tied
// to any request because widgets outlive the request that loaded them.
//
// Entries carry:
//   - widget_id: the registry id
//   - widget: the display name, usually the uploaded file name
func ForWidget(id, name string) *slog.Logger {
	return slog.Default().With("widget_id", id, "widget", name)
}
