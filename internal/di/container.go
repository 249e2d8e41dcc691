package di

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/internetdrew/portfolio-v3/internal/collections"
	"github.com/internetdrew/portfolio-v3/internal/commands"
	contactcmd "github.com/internetdrew/portfolio-v3/internal/commands/contact"
	contentcmd "github.com/internetdrew/portfolio-v3/internal/commands/content"
	"github.com/internetdrew/portfolio-v3/internal/emailjs"
	"github.com/internetdrew/portfolio-v3/internal/generator"
	sitehttp "github.com/internetdrew/portfolio-v3/internal/http"
	"github.com/internetdrew/portfolio-v3/internal/logging"
	"github.com/internetdrew/portfolio-v3/internal/logging/gologger"
	"github.com/internetdrew/portfolio-v3/internal/markdown"
	"github.com/internetdrew/portfolio-v3/internal/metrics"
	"github.com/internetdrew/portfolio-v3/internal/runtimeconfig"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

// Container wires the site's services from one Config.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	contentFS      fs.FS
	definitions    []collections.Collection
	httpClient     *http.Client
	sender         contactcmd.Sender
	parser         interfaces.MarkdownParser

	registry *collections.Registry
	metrics  *metrics.Metrics
	contact  *contactcmd.SendContactHandler
	rebuild  *contentcmd.RebuildContentHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the go-logger provider built from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithContentFS reads collections from filesystem instead of Content.Root.
func WithContentFS(filesystem fs.FS) Option {
	return func(c *Container) {
		c.contentFS = filesystem
	}
}

// WithCollections overrides the manifest and built-in collection set.
func WithCollections(defs []collections.Collection) Option {
	return func(c *Container) {
		c.definitions = defs
	}
}

// WithHTTPClient sets the client used for the email API.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithSender replaces the email API client, enabling the relay even
// without credentials.
func WithSender(sender contactcmd.Sender) Option {
	return func(c *Container) {
		c.sender = sender
	}
}

// WithMarkdownParser overrides the goldmark parser built from config.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		c.parser = parser
	}
}

// NewContainer validates cfg and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureCollections(); err != nil {
		return nil, err
	}
	if c.parser == nil {
		c.parser = markdown.NewGoldmarkParser(cfg.Markdown)
	}
	c.metrics = metrics.New()

	registry, err := collections.NewRegistry(c.contentFS, c.definitions,
		collections.WithLogger(logging.ContentLogger(c.loggerProvider)),
		collections.WithConcurrency(cfg.Content.Concurrency),
		collections.WithObserver(c.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("configure collections: %w", err)
	}
	c.registry = registry
	c.rebuild = contentcmd.NewRebuildContentHandler(registry, c.WriteArtifacts, logging.ContentLogger(c.loggerProvider))

	if err := c.configureContact(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureCollections() error {
	if c.contentFS == nil {
		c.contentFS = os.DirFS(c.Config.Content.Root)
	}
	if len(c.definitions) > 0 {
		return nil
	}
	manifest := strings.TrimSpace(c.Config.Content.Manifest)
	if manifest == "" {
		c.definitions = collections.DefaultCollections()
		return nil
	}
	defs, err := collections.LoadManifest(manifest)
	if err != nil {
		return fmt.Errorf("configure collections: %w", err)
	}
	c.definitions = defs
	return nil
}

func (c *Container) configureContact() error {
	logger := logging.ContactLogger(c.loggerProvider)
	sender := c.sender
	if sender == nil {
		if !c.Config.ContactEnabled() {
			logger.Warn("contact.relay.disabled", "reason", "email credentials not configured")
			return nil
		}
		client, err := emailjs.NewClient(c.Config.Credentials(),
			emailjs.WithEndpoint(c.Config.Contact.Endpoint),
			emailjs.WithHTTPClient(c.httpClient),
			emailjs.WithTimeout(c.Config.Contact.Timeout),
		)
		if err != nil {
			return fmt.Errorf("configure contact relay: %w", err)
		}
		sender = client
	}

	var handlerOpts []commands.HandlerOption[contactcmd.SendContactCommand]
	if timeout := c.Config.Contact.Timeout; timeout > 0 {
		handlerOpts = append(handlerOpts, commands.WithTimeout[contactcmd.SendContactCommand](timeout))
	}
	handlerOpts = append(handlerOpts, contactcmd.WithUpstreamObserver(c.metrics.ObserveUpstream))
	c.contact = contactcmd.NewSendContactHandler(sender, logger, handlerOpts...)
	return nil
}

// LoggerProvider returns the configured provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Registry returns the content registry. It has not been built yet.
func (c *Container) Registry() *collections.Registry {
	return c.registry
}

// Metrics returns the Prometheus instruments.
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// MarkdownParser returns the parser used to render entry bodies.
func (c *Container) MarkdownParser() interfaces.MarkdownParser {
	return c.parser
}

// ContactHandler returns the relay command handler, or nil when the relay
// is disabled.
func (c *Container) ContactHandler() *contactcmd.SendContactHandler {
	return c.contact
}

// RebuildHandler returns the command that rebuilds collections and writes
// artifacts.
func (c *Container) RebuildHandler() *contentcmd.RebuildContentHandler {
	return c.rebuild
}

// WriteArtifacts renders the sitemap, feeds and robots.txt of snapshot into
// outputDir.
func (c *Container) WriteArtifacts(ctx context.Context, outputDir string, snapshot *collections.Snapshot, force bool) (generator.WriteResult, error) {
	return generator.Write(ctx, outputDir, c.Site(), snapshot,
		generator.WithForce(force),
		generator.WithLogger(logging.GeneratorLogger(c.loggerProvider)),
	)
}

// Site returns the metadata used by feeds and the sitemap.
func (c *Container) Site() generator.Site {
	return generator.Site{
		Title:       c.Config.Site.Title,
		Description: c.Config.Site.Description,
		BaseURL:     c.Config.Site.BaseURL,
	}
}

// Router builds the gin engine over the container's services.
func (c *Container) Router() *gin.Engine {
	deps := sitehttp.Deps{
		Content:        c.registry,
		Parser:         c.parser,
		Metrics:        c.metrics,
		Logger:         logging.HTTPLogger(c.loggerProvider),
		Site:           c.Site(),
		AllowedOrigins: c.Config.Server.AllowedOrigins,
	}
	if c.contact != nil {
		deps.Contact = c.contact
	}
	return sitehttp.NewRouter(deps)
}

// Watcher returns a watcher rebuilding the registry when files under
// Content.Root change.
func (c *Container) Watcher(opts ...collections.WatcherOption) *collections.Watcher {
	base := []collections.WatcherOption{
		collections.WithDebounce(c.Config.Content.Debounce),
		collections.WithWatcherLogger(logging.ContentLogger(c.loggerProvider)),
	}
	return collections.NewWatcher(c.Config.Content.Root, c.registry, append(base, opts...)...)
}
