// Package cli implements the site command line.
package cli

import (
	"github.com/spf13/cobra"

	site "github.com/internetdrew/portfolio-v3"
	"github.com/internetdrew/portfolio-v3/cmd/site/internal/bootstrap"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

type moduleBuilder func(bootstrap.Options) (*site.Module, site.Config, error)

type rootOptions struct {
	configPath  string
	contentRoot string
	manifest    string
	logLevel    string

	build          moduleBuilder
	loggerProvider interfaces.LoggerProvider
}

func (o *rootOptions) module() (*site.Module, site.Config, error) {
	return o.build(bootstrap.Options{
		ConfigPath:     o.configPath,
		ContentRoot:    o.contentRoot,
		Manifest:       o.manifest,
		LogLevel:       o.logLevel,
		LoggerProvider: o.loggerProvider,
	})
}

// NewRootCommand returns the "site" command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{build: bootstrap.BuildModule})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "site",
		Short:         "Build, validate and serve the portfolio content",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ./site.yaml or ./config/site.yaml)")
	flags.StringVar(&opts.contentRoot, "content", "", "content root directory (overrides content.root)")
	flags.StringVar(&opts.manifest, "manifest", "", "collection manifest YAML (overrides content.manifest)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (overrides logging.level)")

	root.AddCommand(
		newBuildCommand(opts),
		newServeCommand(opts),
		newValidateContactCommand(opts),
	)
	return root
}
