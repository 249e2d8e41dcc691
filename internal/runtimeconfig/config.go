package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/internetdrew/portfolio-v3/internal/emailjs"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

var ErrContentRootRequired = errors.New("site config: content root is required")
var ErrConcurrencyInvalid = errors.New("site config: content concurrency must be zero or positive")
var ErrBaseURLInvalid = errors.New("site config: base url must be an absolute http(s) url")
var ErrServerAddrRequired = errors.New("site config: server address is required")
var ErrTimeoutInvalid = errors.New("site config: timeout must be zero or positive")
var ErrContactEndpointInvalid = errors.New("site config: contact endpoint must be an absolute http(s) url")

// ErrContactCredentialsIncomplete rejects configurations that set some but not
// all of the email API identifiers.
var ErrContactCredentialsIncomplete = errors.New("site config: contact credentials are incomplete")
var ErrLoggingLevelInvalid = errors.New("site config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("site config: logging format is invalid")

// Config aggregates every setting of the site binary.
type Config struct {
	Site      SiteConfig              `mapstructure:"site"`
	Content   ContentConfig           `mapstructure:"content"`
	Contact   ContactConfig           `mapstructure:"contact"`
	Server    ServerConfig            `mapstructure:"server"`
	Generator GeneratorConfig         `mapstructure:"generator"`
	Logging   LoggingConfig           `mapstructure:"logging"`
	Markdown  interfaces.ParseOptions `mapstructure:"markdown"`
}

// SiteConfig holds metadata used in feeds and the sitemap.
type SiteConfig struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	BaseURL     string `mapstructure:"base_url"`
}

// ContentConfig locates the markdown collections.
type ContentConfig struct {
	Root string `mapstructure:"root"`
	// Manifest optionally points at a YAML file declaring the collections.
	Manifest    string        `mapstructure:"manifest"`
	Concurrency int           `mapstructure:"concurrency"`
	Debounce    time.Duration `mapstructure:"debounce"`
}

// ContactConfig configures the relay to the email API. The identifiers are
// secrets and must only ever reach the server process.
type ContactConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ServiceID   string        `mapstructure:"service_id"`
	TemplateID  string        `mapstructure:"template_id"`
	UserID      string        `mapstructure:"user_id"`
	AccessToken string        `mapstructure:"access_token"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// GeneratorConfig controls where build artifacts land.
type GeneratorConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggingConfig captures options for the go-logger provider.
type LoggingConfig struct {
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Title:   "Drew's Portfolio",
			BaseURL: "http://localhost:8080",
		},
		Content: ContentConfig{
			Root:        "content",
			Concurrency: 0,
			Debounce:    500 * time.Millisecond,
		},
		Contact: ContactConfig{
			Endpoint: emailjs.DefaultEndpoint,
			Timeout:  emailjs.DefaultTimeout,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Generator: GeneratorConfig{
			OutputDir: "dist",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Markdown: interfaces.ParseOptions{
			Extensions: []string{"gfm"},
		},
	}
}

// Credentials returns the email API credentials.
func (cfg Config) Credentials() emailjs.Credentials {
	return emailjs.Credentials{
		ServiceID:   strings.TrimSpace(cfg.Contact.ServiceID),
		TemplateID:  strings.TrimSpace(cfg.Contact.TemplateID),
		UserID:      strings.TrimSpace(cfg.Contact.UserID),
		AccessToken: strings.TrimSpace(cfg.Contact.AccessToken),
	}
}

// ContactEnabled reports whether the relay has every identifier it needs.
func (cfg Config) ContactEnabled() bool {
	return cfg.Credentials().Validate() == nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Root) == "" {
		return ErrContentRootRequired
	}
	if cfg.Content.Concurrency < 0 {
		return ErrConcurrencyInvalid
	}
	if cfg.Content.Debounce < 0 {
		return fmt.Errorf("%w: content.debounce", ErrTimeoutInvalid)
	}
	if !isHTTPURL(cfg.Site.BaseURL) {
		return fmt.Errorf("%w: %q", ErrBaseURLInvalid, cfg.Site.BaseURL)
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	for name, timeout := range map[string]time.Duration{
		"server.read_timeout":     cfg.Server.ReadTimeout,
		"server.write_timeout":    cfg.Server.WriteTimeout,
		"server.shutdown_timeout": cfg.Server.ShutdownTimeout,
		"contact.timeout":         cfg.Contact.Timeout,
	} {
		if timeout < 0 {
			return fmt.Errorf("%w: %s", ErrTimeoutInvalid, name)
		}
	}
	if !isHTTPURL(cfg.Contact.Endpoint) {
		return ErrContactEndpointInvalid
	}
	creds := cfg.Credentials()
	anySet := creds.ServiceID != "" || creds.TemplateID != "" || creds.UserID != "" || creds.AccessToken != ""
	if anySet {
		if err := creds.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrContactCredentialsIncomplete, err)
		}
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
