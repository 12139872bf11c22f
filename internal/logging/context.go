package logging

import (
	"context"
	"log/slog"
	"slices"
)

type attrsKey struct{}

// WithAttrs returns a copy of ctx carrying key/value pairs that FromContext
// attaches to a logger. Pairs accumulate across nested calls.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev, _ := ctx.Value(attrsKey{}).([]any)
	return context.WithValue(ctx, attrsKey{}, append(slices.Clip(prev), args...))
}

// FromContext returns logger enriched with the pairs stored in ctx, or
// logger itself when there are none.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if ctx == nil {
		return logger
	}
	if args, ok := ctx.Value(attrsKey{}).([]any); ok {
		return logger.With(args...)
	}
	return logger
}
