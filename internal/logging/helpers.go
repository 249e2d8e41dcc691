package logging

import (
	"context"
	"maps"

	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

// WithFields attaches structured fields to a logger when the implementation
// supports the optional FieldsLogger extension.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// FromContext returns the logger enriched with any fields stored on ctx.
func FromContext(logger interfaces.Logger, ctx context.Context) interfaces.Logger {
	if logger == nil || ctx == nil {
		return logger
	}
	return WithFields(logger, ContextFields(ctx))
}
