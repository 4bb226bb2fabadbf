// Package logging defines the structured logger used across the service.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are key-value pairs:
//
//	log.Info(ctx, "match stored", "post_id", postID, "candidate_id", candidateID)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

// New builds a slog-backed Logger writing to w. format is "json" or "text".
func New(w io.Writer, level, format string) Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return &handlerLogger{base: slog.New(h)}
}

// Nop discards everything.
func Nop() Logger {
	return &handlerLogger{base: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

type handlerLogger struct {
	base *slog.Logger
}

func (h *handlerLogger) Debug(ctx context.Context, msg string, args ...any) {
	h.base.Log(ctx, slog.LevelDebug, msg, args...)
}

func (h *handlerLogger) Info(ctx context.Context, msg string, args ...any) {
	h.base.Log(ctx, slog.LevelInfo, msg, args...)
}

func (h *handlerLogger) Warn(ctx context.Context, msg string, args ...any) {
	h.base.Log(ctx, slog.LevelWarn, msg, args...)
}

func (h *handlerLogger) Error(ctx context.Context, msg string, args ...any) {
	h.base.Log(ctx, slog.LevelError, msg, args...)
}

func (h *handlerLogger) With(args ...any) Logger {
	if len(args) == 0 {
		return h
	}
	return &handlerLogger{base: h.base.With(args...)}
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
