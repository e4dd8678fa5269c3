// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"context"
)

type contextKeyType struct{}

var contextKey = contextKeyType{}

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// FromContext returns the logger carried by ctx, or a logger discarding every record.
func FromContext(ctx context.Context) Logger {
	return FromContextOr(ctx, nullLogger)
}

// FromContextOr returns the logger carried by ctx, or fallback when ctx has none.
// Request scoped loggers set by RequestMiddlewareLogger are preserved this way.
func FromContextOr(ctx context.Context, fallback Logger) Logger {
	if ctx == nil {
		return fallback
	}
	if logger, ok := ctx.Value(contextKey).(Logger); ok {
		return logger
	}
	return fallback
}
