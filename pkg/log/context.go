package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Ctx retrieves the logger from the context.
// If no logger is found, the global logger is returned.
func Ctx(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}

// WithFields derives a child of the context logger carrying the given
// string fields and stores it back into a new context.
func WithFields(ctx context.Context, kv map[string]string) context.Context {
	lc := Ctx(ctx).With()
	for k, v := range kv {
		lc = lc.Str(k, v)
	}
	return WithLogger(ctx, lc.Logger())
}
