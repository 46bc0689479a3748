// Package logging carries a zerolog logger through a context.Context.
package logging

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

type logKey struct{}

var nop = zerolog.Nop()

// New returns a human-readable logger writing to w. verbose enables debug
// events.
func New(w io.Writer, verbose bool) *zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}).
		Level(level)
	return &logger
}

// WithLogger attaches the given logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}

// From returns the logger attached to ctx, or a disabled logger.
func From(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(logKey{}).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return &nop
}
