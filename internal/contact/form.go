package contact

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/internetdrew/portfolio-v3/internal/logging"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

var (
	ErrSubmitInFlight    = errors.New("contact submission already in flight")
	ErrInvalidTransition = errors.New("contact form transition not allowed")
	ErrUnknownField      = errors.New("contact form field unknown")
	ErrTransportMissing  = errors.New("contact transport not configured")
)

// Outcome describes where a Submit settled.
type Outcome struct {
	State State
	// FieldErrors is set when State is StateInvalid.
	FieldErrors map[string]string
	// Result is the transport result when the transport was called.
	Result Result
	// Err is the transport failure when State is StateError.
	Err error
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithNotifier sets the notifier used for success and failure notices.
func WithNotifier(notifier Notifier) FormOption {
	return func(f *Form) {
		if notifier != nil {
			f.notifier = notifier
		}
	}
}

// WithFormLogger sets the form logger.
func WithFormLogger(logger interfaces.Logger) FormOption {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Form is one contact form instance. It allows at most one submission in
// flight and is safe for concurrent use.
type Form struct {
	transport Transport
	notifier  Notifier
	logger    interfaces.Logger

	mu     sync.Mutex
	state  State
	values Submission
	errors map[string]string
}

// NewForm returns an idle form with empty fields.
func NewForm(transport Transport, opts ...FormOption) *Form {
	f := &Form{
		transport: transport,
		notifier:  NotifierFunc(nil),
		logger:    logging.NoOp(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Values returns the current field values.
func (f *Form) Values() Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Errors returns the per-field messages from the last validation.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errors)
}

// Set edits a field. Editing after a success starts a new attempt from idle.
// Editing an invalid field clears its message.
func (f *Form) Set(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.state.Editable() {
		if f.state == StateSubmitting {
			return ErrSubmitInFlight
		}
		return fmt.Errorf("%w: set %s while %s", ErrInvalidTransition, field, f.state)
	}
	if !f.values.set(field, value) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	delete(f.errors, string(field))
	if f.state == StateSuccess {
		f.state = StateIdle
	}
	return nil
}

// Fill sets every field at once.
func (f *Form) Fill(submission Submission) error {
	for _, field := range Fields() {
		value, _ := submission.Get(field)
		if err := f.Set(field, value); err != nil {
			return err
		}
	}
	return nil
}

// Submit validates the fields and, when they pass, calls the transport
// exactly once. Invalid fields settle in StateInvalid without a transport
// call. A successful send clears the fields; a failed send keeps them.
func (f *Form) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if f.state == StateSubmitting || f.state == StateValidating {
		f.mu.Unlock()
		return Outcome{State: f.state}, ErrSubmitInFlight
	}
	if err := f.transition(StateValidating); err != nil {
		state := f.state
		f.mu.Unlock()
		return Outcome{State: state}, err
	}

	submission := f.values
	if err := submission.Validate(); err != nil {
		f.errors = FieldErrors(err)
		_ = f.transition(StateInvalid)
		outcome := Outcome{State: StateInvalid, FieldErrors: maps.Clone(f.errors)}
		f.mu.Unlock()
		f.logger.Debug("contact.submit.invalid", "fields", InvalidFields(outcome.FieldErrors))
		return outcome, nil
	}
	f.errors = nil
	_ = f.transition(StateSubmitting)
	f.mu.Unlock()

	result, sendErr := f.send(ctx, submission)

	f.mu.Lock()
	outcome := Outcome{Result: result}
	if sendErr == nil && result.Success {
		_ = f.transition(StateSuccess)
		f.values = Submission{}
		outcome.State = StateSuccess
	} else {
		if sendErr == nil {
			sendErr = fmt.Errorf("%w: transport reported failure", ErrRelayStatus)
		}
		_ = f.transition(StateError)
		outcome.State = StateError
		outcome.Err = sendErr
	}
	f.mu.Unlock()

	if outcome.State == StateSuccess {
		f.logger.Info("contact.submit.success")
		f.notifier.Notify(Notice{Kind: NoticeSuccess, Text: NoticeSuccessText})
	} else {
		f.logger.Warn("contact.submit.failed", "error", sendErr)
		f.notifier.Notify(Notice{Kind: NoticeFailure, Text: NoticeFailureText})
	}
	return outcome, nil
}

// Reset returns the form to idle. Leaving success clears the fields; leaving
// invalid or error keeps them so the user can keep editing.
func (f *Form) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateIdle:
		return nil
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateSuccess:
		f.values = Submission{}
	}
	if err := f.transition(StateIdle); err != nil {
		return err
	}
	f.errors = nil
	return nil
}

func (f *Form) send(ctx context.Context, submission Submission) (result Result, err error) {
	if f.transport == nil {
		return Result{}, ErrTransportMissing
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = Result{}, fmt.Errorf("contact transport panic: %v", r)
		}
	}()
	return f.transport.Send(ctx, submission)
}

// transition must be called with mu held.
func (f *Form) transition(to State) error {
	if !canTransition(f.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.state, to)
	}
	f.state = to
	return nil
}
