package site

import "github.com/internetdrew/portfolio-v3/internal/runtimeconfig"

var (
	ErrContentRootRequired          = runtimeconfig.ErrContentRootRequired
	ErrBaseURLInvalid               = runtimeconfig.ErrBaseURLInvalid
	ErrServerAddrRequired           = runtimeconfig.ErrServerAddrRequired
	ErrContactCredentialsIncomplete = runtimeconfig.ErrContactCredentialsIncomplete
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	SiteConfig      = runtimeconfig.SiteConfig
	ContentConfig   = runtimeconfig.ContentConfig
	ContactConfig   = runtimeconfig.ContactConfig
	ServerConfig    = runtimeconfig.ServerConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads path (optional), dotenv files and SITE_* variables.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
