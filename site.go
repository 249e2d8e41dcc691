// Package site wires the portfolio content registry, contact relay and
// HTTP server behind one Module.
package site

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/internetdrew/portfolio-v3/internal/collections"
	contactcmd "github.com/internetdrew/portfolio-v3/internal/commands/contact"
	contentcmd "github.com/internetdrew/portfolio-v3/internal/commands/content"
	"github.com/internetdrew/portfolio-v3/internal/di"
	"github.com/internetdrew/portfolio-v3/internal/generator"
	"github.com/internetdrew/portfolio-v3/internal/logging"
	"github.com/internetdrew/portfolio-v3/internal/metrics"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

// Collection exports the collection definition type.
type Collection = collections.Collection

// Entry exports the validated entry type.
type Entry = collections.Entry

// Snapshot exports the immutable registry view.
type Snapshot = collections.Snapshot

// BuildErrors exports the per-document build failure list.
type BuildErrors = collections.BuildErrors

// Site exports the feed and sitemap metadata.
type Site = generator.Site

// Module represents the top level site runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a Module using the provided configuration and optional DI
// overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Registry returns the content registry.
func (m *Module) Registry() *collections.Registry {
	return m.container.Registry()
}

// Build rebuilds the registry and installs the new snapshot. The snapshot is
// returned even when some documents failed; use AsBuildErrors on the error
// to list them.
func (m *Module) Build(ctx context.Context) (*Snapshot, error) {
	return m.container.Registry().Rebuild(ctx)
}

// Write renders the sitemap, feeds and robots.txt of snapshot into
// outputDir.
func (m *Module) Write(ctx context.Context, outputDir string, snapshot *Snapshot, force bool) (generator.WriteResult, error) {
	return m.container.WriteArtifacts(ctx, outputDir, snapshot, force)
}

// Rebuild returns the command handler that rebuilds collections and, when
// asked, writes artifacts.
func (m *Module) Rebuild() *contentcmd.RebuildContentHandler {
	return m.container.RebuildHandler()
}

// Router returns the gin engine serving the API and artifacts.
func (m *Module) Router() *gin.Engine {
	return m.container.Router()
}

// Watcher returns a watcher that rebuilds on content changes.
func (m *Module) Watcher(opts ...collections.WatcherOption) *collections.Watcher {
	return m.container.Watcher(opts...)
}

// Contact returns the relay command handler, or nil when disabled.
func (m *Module) Contact() *contactcmd.SendContactHandler {
	return m.container.ContactHandler()
}

// Metrics returns the Prometheus instruments.
func (m *Module) Metrics() *metrics.Metrics {
	return m.container.Metrics()
}

// Logger returns a module-scoped logger.
func (m *Module) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(m.container.LoggerProvider(), module)
}

// AsBuildErrors extracts per-document failures from a Build error.
func AsBuildErrors(err error) BuildErrors {
	return collections.AsBuildErrors(err)
}
