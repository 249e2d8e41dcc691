package di

import (
	"testing"

	"github.com/internetdrew/portfolio-v3/internal/logging/gologger"
	"github.com/internetdrew/portfolio-v3/internal/runtimeconfig"
)

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Root = t.TempDir()
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	provider, ok := container.loggerProvider.(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.loggerProvider)
	}

	logger := provider.GetLogger("site.test")
	if logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}
