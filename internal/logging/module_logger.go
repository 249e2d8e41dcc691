package logging

import (
	"context"
	"strings"

	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

const (
	rootModule      = "site"
	contentModule   = "site.content"
	contactModule   = "site.contact"
	httpModule      = "site.http"
	generatorModule = "site.generator"
)

const (
	fieldEntryPath   = "entry_path"
	fieldCollection  = "collection"
	fieldRequestID   = "request_id"
	fieldBuildAction = "build_action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered per module.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ContentLogger returns the logger namespace reserved for the content registry.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// ContactLogger returns the logger namespace reserved for contact submissions.
func ContactLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contactModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP server.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// GeneratorLogger returns the logger namespace reserved for sitemap and feed output.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// WithEntryContext enriches the logger with the collection, entry path and
// build action. Empty values are ignored.
func WithEntryContext(logger interfaces.Logger, collection, path, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(collection); trimmed != "" {
		fields[fieldCollection] = trimmed
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldEntryPath] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldBuildAction] = trimmed
	}
	return WithFields(logger, fields)
}

// WithRequestID tags the logger with a relay request identifier.
func WithRequestID(logger interfaces.Logger, requestID string) interfaces.Logger {
	if strings.TrimSpace(requestID) == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldRequestID: requestID})
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
