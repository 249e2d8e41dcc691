package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	contactcmd "github.com/internetdrew/portfolio-v3/internal/commands/contact"
	"github.com/internetdrew/portfolio-v3/internal/contact"
	"github.com/internetdrew/portfolio-v3/internal/logging"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

var (
	errSubmissionInvalid = errors.New("submission invalid")
	errRelayDisabled     = errors.New("contact relay disabled: email credentials are not configured")
	errSubmissionFailed  = errors.New("submission failed")
)

func newValidateContactCommand(opts *rootOptions) *cobra.Command {
	var (
		submission contact.Submission
		send       bool
		relayURL   string
	)
	cmd := &cobra.Command{
		Use:   "validate-contact",
		Short: "Check a contact submission against the form rules, optionally relaying it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if err := submission.Validate(); err != nil {
				fields := contact.FieldErrors(err)
				printFieldErrors(out, fields)
				return fmt.Errorf("%w: %d fields", errSubmissionInvalid, len(fields))
			}
			fmt.Fprintln(out, "submission valid")

			var (
				transport contact.Transport
				logger    = logging.NoOp()
			)
			switch {
			case relayURL != "":
				transport = contact.NewRelayTransport(relayURL)
			case send:
				module, _, err := opts.module()
				if err != nil {
					return err
				}
				handler := module.Contact()
				if handler == nil {
					return errRelayDisabled
				}
				transport = commandTransport(handler)
				logger = module.Logger("site.contact")
			default:
				return nil
			}

			return submitForm(cmd.Context(), out, transport, logger, submission)
		},
	}
	cmd.Flags().StringVar(&submission.Name, "name", "", "sender name")
	cmd.Flags().StringVar(&submission.Email, "email", "", "sender email address")
	cmd.Flags().StringVar(&submission.Message, "message", "", "message body")
	cmd.Flags().BoolVar(&send, "send", false, "relay the submission through the email API")
	cmd.Flags().StringVar(&relayURL, "relay-url", "", "post the submission to a running relay endpoint instead")
	return cmd
}

// commandTransport sends submissions through the contact command handler.
func commandTransport(handler *contactcmd.SendContactHandler) contact.Transport {
	return contact.TransportFunc(func(ctx context.Context, submission contact.Submission) (contact.Result, error) {
		err := handler.Execute(ctx, contactcmd.SendContactCommand{
			Name:    submission.Name,
			Email:   submission.Email,
			Message: submission.Message,
		})
		if err != nil {
			return contact.Result{}, err
		}
		return contact.Result{Success: true}, nil
	})
}

func submitForm(ctx context.Context, out io.Writer, transport contact.Transport, logger interfaces.Logger, submission contact.Submission) error {
	notices := contact.NotifierFunc(func(notice contact.Notice) {
		fmt.Fprintln(out, notice.Text)
		contact.LogNotifier(logger).Notify(notice)
	})
	form := contact.NewForm(transport, contact.WithNotifier(notices), contact.WithFormLogger(logger))
	if err := form.Fill(submission); err != nil {
		return err
	}

	outcome, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	switch outcome.State {
	case contact.StateInvalid:
		printFieldErrors(out, outcome.FieldErrors)
		return fmt.Errorf("%w: %d fields", errSubmissionInvalid, len(outcome.FieldErrors))
	case contact.StateError:
		if outcome.Err != nil {
			return fmt.Errorf("%w: %w", errSubmissionFailed, outcome.Err)
		}
		return errSubmissionFailed
	}
	return nil
}

func printFieldErrors(out io.Writer, fields map[string]string) {
	for _, field := range contact.InvalidFields(fields) {
		fmt.Fprintf(out, "%s: %s\n", field, fields[field])
	}
}
