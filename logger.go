package cytoframe

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with frame-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithStore adds the store name to the logger.
func (l *Logger) WithStore(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("store", name),
	}
}

// WithShape adds the event matrix shape to the logger.
func (l *Logger) WithShape(rows, cols int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows, "cols", cols),
	}
}

// LogRename logs a channel or marker rename.
func (l *Logger) LogRename(ctx context.Context, kind, oldName, newName string, keywords int) {
	l.DebugContext(ctx, "renamed "+kind,
		"old", oldName,
		"new", newName,
		"keywords", keywords,
	)
}

// LogCompensate logs a compensation run over the event matrix.
func (l *Logger) LogCompensate(ctx context.Context, markers int, reverse bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compensation failed",
			"markers", markers,
			"reverse", reverse,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "compensation applied",
		"markers", markers,
		"reverse", reverse,
	)
}

// LogWriteStore logs a store export.
func (l *Logger) LogWriteStore(ctx context.Context, name string, rows, cols int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store write failed",
			"store", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "store written",
		"store", name,
		"rows", rows,
		"cols", cols,
		"duration", duration,
	)
}

// LogOpenStore logs opening a store.
func (l *Logger) LogOpenStore(ctx context.Context, name string, rows, cols int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store open failed",
			"store", name,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "store opened",
		"store", name,
		"rows", rows,
		"cols", cols,
	)
}

// LogFlush logs a metadata flush of a store-backed frame.
func (l *Logger) LogFlush(ctx context.Context, name string, err error) {
	if err != nil {
		l.WarnContext(ctx, "flush failed",
			"store", name,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "flush completed", "store", name)
}
