package site

import (
	"errors"

	command "github.com/goliatone/go-command"
)

// CommandRegistry records command handlers so hosts can expose them via CLI
// or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures RegisterCommands.
type RegistrationOptions struct {
	Registry      CommandRegistry
	Dispatcher    CommandDispatcher
	CronRegistrar CronRegistrar
	// RebuildCron overrides the schedule of the content rebuild handler.
	RebuildCron   string
}

// RegistrationResult captures the handlers and dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterCommands hands the module's command handlers to the given
// registry, dispatcher and cron registrar. The contact handler is skipped
// when the relay is disabled. Registration errors are joined; handlers that
// registered successfully stay registered.
func RegisterCommands(module *Module, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{}
	if module == nil {
		return result, nil
	}

	var errs error
	register := func(handler any) {
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
		if opts.CronRegistrar != nil {
			if cronCmd, ok := handler.(command.CronCommand); ok {
				if err := opts.CronRegistrar(cronCmd.CronOptions(), cronCmd.CronHandler()); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	if rebuild := module.Rebuild(); rebuild != nil {
		register(rebuild.WithCronExpression(opts.RebuildCron))
	}
	if contact := module.Contact(); contact != nil {
		register(contact)
	}
	return result, errs
}
