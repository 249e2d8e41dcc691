package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/internetdrew/portfolio-v3/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.ContactEnabled() {
		t.Fatalf("expected contact relay to be disabled without credentials")
	}
}

func TestConfigValidate_RequiresContentRoot(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Root = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrContentRootRequired) {
		t.Fatalf("expected ErrContentRootRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsRelativeBaseURL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.BaseURL = "/blog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrBaseURLInvalid) {
		t.Fatalf("expected ErrBaseURLInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsPartialCredentials(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Contact.ServiceID = "service_123"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrContactCredentialsIncomplete) {
		t.Fatalf("expected ErrContactCredentialsIncomplete, got %v", err)
	}
}

func TestConfigValidate_RejectsNegativeTimeouts(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Server.ShutdownTimeout = -time.Second

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrTimeoutInvalid) {
		t.Fatalf("expected ErrTimeoutInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "site.yaml", `
site:
  title: Example
  base_url: https://example.com
content:
  root: ./posts
  concurrency: 4
server:
  addr: ":9090"
  shutdown_timeout: 3s
  allowed_origins: ["https://example.com"]
logging:
  format: console
`)

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Site.Title != "Example" || cfg.Site.BaseURL != "https://example.com" {
		t.Fatalf("unexpected site config %+v", cfg.Site)
	}
	if cfg.Content.Root != "./posts" || cfg.Content.Concurrency != 4 {
		t.Fatalf("unexpected content config %+v", cfg.Content)
	}
	if cfg.Content.Debounce != 500*time.Millisecond {
		t.Fatalf("expected default debounce, got %s", cfg.Content.Debounce)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://example.com" {
		t.Fatalf("unexpected allowed origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := runtimeconfig.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadAcceptsLegacyCredentialVariables(t *testing.T) {
	t.Setenv("EMAIL_SERVICE_ID", "service_123")
	t.Setenv("EMAIL_TEMPLATE_ID", "template_456")
	t.Setenv("EMAIL_USER_ID", "user_789")
	t.Setenv("EMAIL_PRIVATE_KEY", "private")
	t.Setenv("SITE_SERVER_ADDR", ":7070")

	cfg, err := runtimeconfig.Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.ContactEnabled() {
		t.Fatalf("expected contact relay to be enabled")
	}
	creds := cfg.Credentials()
	if creds.ServiceID != "service_123" || creds.TemplateID != "template_456" || creds.UserID != "user_789" || creds.AccessToken != "private" {
		t.Fatalf("unexpected credentials %+v", creds)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("expected SITE_SERVER_ADDR override, got %q", cfg.Server.Addr)
	}
}

func TestLoadPrefersPrefixedVariables(t *testing.T) {
	t.Setenv("EMAIL_SERVICE_ID", "legacy")
	t.Setenv("SITE_CONTACT_SERVICE_ID", "primary")
	t.Setenv("SITE_CONTACT_TEMPLATE_ID", "template")
	t.Setenv("SITE_CONTACT_USER_ID", "user")

	cfg, err := runtimeconfig.Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Contact.ServiceID != "primary" {
		t.Fatalf("expected prefixed variable to win, got %q", cfg.Contact.ServiceID)
	}
}

func TestLoadEnvFilesDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	local := writeFile(t, dir, ".env.local", "SITE_TEST_DOTENV_A=local\n")
	base := writeFile(t, dir, ".env", "SITE_TEST_DOTENV_A=base\nSITE_TEST_DOTENV_B=base\n")
	t.Setenv("SITE_TEST_DOTENV_B", "process")
	t.Cleanup(func() { _ = os.Unsetenv("SITE_TEST_DOTENV_A") })

	if err := runtimeconfig.LoadEnvFiles(local, base, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles() error: %v", err)
	}
	if got := os.Getenv("SITE_TEST_DOTENV_A"); got != "local" {
		t.Fatalf("expected first file to win, got %q", got)
	}
	if got := os.Getenv("SITE_TEST_DOTENV_B"); got != "process" {
		t.Fatalf("expected process environment to win, got %q", got)
	}
}
