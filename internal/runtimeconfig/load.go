package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SITE"

// legacyEnv maps config keys to the variable names the site used before the
// relay moved server side. Both spellings are accepted.
var legacyEnv = map[string]string{
	"contact.service_id":   "EMAIL_SERVICE_ID",
	"contact.template_id":  "EMAIL_TEMPLATE_ID",
	"contact.user_id":      "EMAIL_USER_ID",
	"contact.access_token": "EMAIL_PRIVATE_KEY",
}

// LoadEnvFiles loads dotenv files without overriding variables that are
// already set. Earlier files win. With no arguments it reads $ENV_FILE when
// set, then .env.local and .env. Missing files are skipped.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		if custom := strings.TrimSpace(os.Getenv("ENV_FILE")); custom != "" {
			files = append(files, custom)
		}
		files = append(files, ".env.local", ".env")
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("site config: load %s: %w", file, err)
		}
	}
	return nil
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. An empty path looks for
// site.yaml in the working directory and ./config, and tolerates its absence.
func Load(path string) (Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

	if trimmed := strings.TrimSpace(path); trimmed != "" {
		v.SetConfigFile(trimmed)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("site config: read %s: %w", trimmed, err)
		}
	} else {
		v.SetConfigName("site")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("site config: read: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("site config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func bindLegacyEnv(v *viper.Viper) error {
	for key, legacy := range legacyEnv {
		primary := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, primary, legacy); err != nil {
			return fmt.Errorf("site config: bind %s: %w", legacy, err)
		}
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("site.title", cfg.Site.Title)
	v.SetDefault("site.description", cfg.Site.Description)
	v.SetDefault("site.base_url", cfg.Site.BaseURL)

	v.SetDefault("content.root", cfg.Content.Root)
	v.SetDefault("content.manifest", cfg.Content.Manifest)
	v.SetDefault("content.concurrency", cfg.Content.Concurrency)
	v.SetDefault("content.debounce", cfg.Content.Debounce)

	v.SetDefault("contact.endpoint", cfg.Contact.Endpoint)
	v.SetDefault("contact.timeout", cfg.Contact.Timeout)
	v.SetDefault("contact.service_id", "")
	v.SetDefault("contact.template_id", "")
	v.SetDefault("contact.user_id", "")
	v.SetDefault("contact.access_token", "")

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)

	v.SetDefault("generator.output_dir", cfg.Generator.OutputDir)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)

	v.SetDefault("markdown.extensions", cfg.Markdown.Extensions)
	v.SetDefault("markdown.sanitize", cfg.Markdown.Sanitize)
	v.SetDefault("markdown.hard_wraps", cfg.Markdown.HardWraps)
	v.SetDefault("markdown.safe_mode", cfg.Markdown.SafeMode)
}
