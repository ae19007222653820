package xslog

import (
	"context"
	"log/slog"
)

type ctxLogger struct{}

// WithLogger returns ctx carrying logger. Services and the connect client
// log through the logger found here.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLogger{}, logger)
}

// FromContext returns the logger stored by WithLogger, or slog.Default when
// ctx carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	logger, _ := ctx.Value(ctxLogger{}).(*slog.Logger)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// WithAttrs returns ctx whose logger adds attrs to every record,
// e.g. the activity id for the rest of an analysis.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	return WithLogger(ctx, FromContext(ctx).With(args...))
}
