package logger

import (
	"context"
	"io"
	"log/slog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	traceKey
)

// With returns a context whose logger carries the given fields.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, loggerKey, From(ctx).With(fields...))
}

// WithTraceID stores the request trace id and adds it to the context logger.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	ctx = context.WithValue(ctx, traceKey, traceID)
	return With(ctx, "trace_id", traceID)
}

// TraceID returns the request trace id, or "" outside a request.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceKey).(string)
	return id
}

// From returns the logger stored in ctx, falling back to the process logger.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return l
		}
	}
	return LoggerWrapper()
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
