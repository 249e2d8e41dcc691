package bootstrap

import (
	"fmt"
	"strings"

	site "github.com/internetdrew/portfolio-v3"
	"github.com/internetdrew/portfolio-v3/internal/di"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

// Options captures configuration for site CLI bootstraps.
type Options struct {
	ConfigPath     string
	ContentRoot    string
	Manifest       string
	LogLevel       string
	LoggerProvider interfaces.LoggerProvider
}

// BuildModule loads configuration, applies flag overrides and constructs the
// site module.
func BuildModule(opts Options) (*site.Module, site.Config, error) {
	cfg, err := site.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, site.Config{}, fmt.Errorf("load config: %w", err)
	}
	if trimmed := strings.TrimSpace(opts.ContentRoot); trimmed != "" {
		cfg.Content.Root = trimmed
	}
	if trimmed := strings.TrimSpace(opts.Manifest); trimmed != "" {
		cfg.Content.Manifest = trimmed
	}
	if trimmed := strings.TrimSpace(opts.LogLevel); trimmed != "" {
		cfg.Logging.Level = trimmed
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := site.New(cfg, diOpts...)
	if err != nil {
		return nil, site.Config{}, fmt.Errorf("initialise site module: %w", err)
	}
	return module, cfg, nil
}
