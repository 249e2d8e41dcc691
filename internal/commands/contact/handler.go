package contactcmd

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/internetdrew/portfolio-v3/internal/commands"
	"github.com/internetdrew/portfolio-v3/internal/emailjs"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

const sendOperation = "contact.send"

// ErrSenderMissing is returned when no email sender is configured.
var ErrSenderMissing = errors.New("contact command: email sender not configured")

// Sender delivers template parameters to the email API.
type Sender interface {
	Send(ctx context.Context, params emailjs.TemplateParams) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, params emailjs.TemplateParams) error

func (fn SenderFunc) Send(ctx context.Context, params emailjs.TemplateParams) error {
	return fn(ctx, params)
}

var _ command.Commander[SendContactCommand] = (*SendContactHandler)(nil)

// SendContactHandler relays submissions via the shared command handler.
type SendContactHandler struct {
	inner *commands.Handler[SendContactCommand]
}

// NewSendContactHandler binds the handler to sender. Options are applied
// after the defaults so callers can add telemetry or change the timeout.
func NewSendContactHandler(sender Sender, logger interfaces.Logger, opts ...commands.HandlerOption[SendContactCommand]) *SendContactHandler {
	exec := func(ctx context.Context, msg SendContactCommand) error {
		if sender == nil {
			return ErrSenderMissing
		}
		return sender.Send(ctx, emailjs.TemplateParams{
			Name:    msg.Name,
			Email:   msg.Email,
			Message: msg.Message,
		})
	}

	handlerOpts := []commands.HandlerOption[SendContactCommand]{
		commands.WithLogger[SendContactCommand](logger),
		commands.WithOperation[SendContactCommand](sendOperation),
		commands.WithMessageFields(func(msg SendContactCommand) map[string]any {
			fields := map[string]any{}
			if msg.RequestID != "" {
				fields["request_id"] = msg.RequestID
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SendContactHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SendContactCommand].
func (h *SendContactHandler) Execute(ctx context.Context, msg SendContactCommand) error {
	return h.inner.Execute(ctx, msg)
}

// WithUpstreamObserver reports the duration of every relay attempt that
// passed validation. The default telemetry log line is kept.
func WithUpstreamObserver(observe func(time.Duration)) commands.HandlerOption[SendContactCommand] {
	return commands.WithTelemetry(func(ctx context.Context, msg SendContactCommand, info commands.TelemetryInfo) {
		commands.DefaultTelemetry[SendContactCommand](info.Logger)(ctx, msg, info)
		if observe != nil {
			observe(info.Duration)
		}
	})
}
