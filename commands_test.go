package site_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	command "github.com/goliatone/go-command"

	site "github.com/internetdrew/portfolio-v3"
	contactcmd "github.com/internetdrew/portfolio-v3/internal/commands/contact"
	contentcmd "github.com/internetdrew/portfolio-v3/internal/commands/content"
	"github.com/internetdrew/portfolio-v3/internal/di"
	"github.com/internetdrew/portfolio-v3/internal/emailjs"
)

type recordingRegistry struct {
	handlers []any
	err      error
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return r.err
}

type recordingSubscription struct{ closed bool }

func (s *recordingSubscription) Unsubscribe() { s.closed = true }

type recordingDispatcher struct {
	subscriptions []*recordingSubscription
}

func (d *recordingDispatcher) RegisterCommand(any) (site.CommandSubscription, error) {
	sub := &recordingSubscription{}
	d.subscriptions = append(d.subscriptions, sub)
	return sub, nil
}

type cronRegistration struct {
	config  command.HandlerConfig
	handler func() error
}

type recordingCron struct {
	registrations []cronRegistration
}

func (c *recordingCron) Registrar() site.CronRegistrar {
	return func(cfg command.HandlerConfig, handler any) error {
		fn, _ := handler.(func() error)
		c.registrations = append(c.registrations, cronRegistration{config: cfg, handler: fn})
		return nil
	}
}

func newCommandModule(t *testing.T, opts ...di.Option) *site.Module {
	t.Helper()
	cfg := site.DefaultConfig()
	cfg.Content.Root = t.TempDir()
	content := fstest.MapFS{
		"blog/hello.md": {Data: []byte("---\ntitle: Hello\ndescription: First post\npubDate: 2024-03-01\n---\nHi\n")},
	}
	base := []di.Option{di.WithContentFS(content), di.WithLoggerProvider(noopProvider{})}
	module, err := site.New(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("site.New: %v", err)
	}
	return module
}

func TestRegisterCommandsWithRelayEnabled(t *testing.T) {
	sender := contactcmd.SenderFunc(func(context.Context, emailjs.TemplateParams) error { return nil })
	module := newCommandModule(t, di.WithSender(sender))

	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}
	cron := &recordingCron{}
	result, err := site.RegisterCommands(module, site.RegistrationOptions{
		Registry:      registry,
		Dispatcher:    dispatcher,
		CronRegistrar: cron.Registrar(),
		RebuildCron:   "@daily",
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	if len(result.Handlers) != 2 || len(registry.handlers) != 2 {
		t.Fatalf("expected rebuild and contact handlers, got %d (registry %d)", len(result.Handlers), len(registry.handlers))
	}
	if len(result.Subscriptions) != 2 || len(dispatcher.subscriptions) != 2 {
		t.Fatalf("expected two dispatcher subscriptions, got %d", len(result.Subscriptions))
	}
	if _, ok := result.Handlers[0].(*contentcmd.RebuildContentHandler); !ok {
		t.Fatalf("expected rebuild handler first, got %T", result.Handlers[0])
	}
	if _, ok := result.Handlers[1].(*contactcmd.SendContactHandler); !ok {
		t.Fatalf("expected contact handler second, got %T", result.Handlers[1])
	}

	if len(cron.registrations) != 1 {
		t.Fatalf("expected only the rebuild handler on cron, got %d", len(cron.registrations))
	}
	if got := cron.registrations[0].config.Expression; got != "@daily" {
		t.Fatalf("expected cron override, got %q", got)
	}
	if err := cron.registrations[0].handler(); err != nil {
		t.Fatalf("scheduled rebuild: %v", err)
	}
	if snapshot := module.Registry().Current(); snapshot == nil || snapshot.Len("blog") != 1 {
		t.Fatalf("expected scheduled rebuild to install a snapshot")
	}
}

func TestRegisterCommandsSkipsDisabledRelay(t *testing.T) {
	module := newCommandModule(t)

	result, err := site.RegisterCommands(module, site.RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 1 {
		t.Fatalf("expected only the rebuild handler, got %d", len(result.Handlers))
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no subscriptions without a dispatcher")
	}
}

func TestRegisterCommandsJoinsRegistryErrors(t *testing.T) {
	module := newCommandModule(t)
	boom := errors.New("registry full")

	result, err := site.RegisterCommands(module, site.RegistrationOptions{Registry: &recordingRegistry{err: boom}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined registry error, got %v", err)
	}
	if len(result.Handlers) != 1 {
		t.Fatalf("handlers should still be reported, got %d", len(result.Handlers))
	}
}

func TestRegisterCommandsNilModule(t *testing.T) {
	result, err := site.RegisterCommands(nil, site.RegistrationOptions{})
	if err != nil || len(result.Handlers) != 0 {
		t.Fatalf("expected empty result, got %v (%v)", result, err)
	}
}
