package contactcmd

import (
	"github.com/internetdrew/portfolio-v3/internal/contact"
)

const sendContactMessageType = "site.contact.send"

// SendContactCommand relays one contact submission to the email API.
type SendContactCommand struct {
	// RequestID correlates the relay request with its log entries.
	RequestID string `json:"request_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// Type implements command.Message.
func (SendContactCommand) Type() string { return sendContactMessageType }

// Validate applies the contact form rules so the relay never forwards a
// submission the form itself would reject.
func (cmd SendContactCommand) Validate() error {
	return cmd.Submission().Validate()
}

// Submission returns the form fields of the command.
func (cmd SendContactCommand) Submission() contact.Submission {
	return contact.Submission{Name: cmd.Name, Email: cmd.Email, Message: cmd.Message}
}
