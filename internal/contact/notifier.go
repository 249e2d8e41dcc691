package contact

import "github.com/internetdrew/portfolio-v3/pkg/interfaces"

const (
	NoticeSuccessText = "Your message has been sent. Thank you!"
	NoticeFailureText = "Oops. Something went wrong. I'm so embarrased!"
)

// NoticeKind distinguishes confirmation from failure notices.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeFailure NoticeKind = "error"
)

// Notice is the single user-visible message shown after a submit settles.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Notifier surfaces notices to the user (a toast in the browser, a line on
// the terminal for the CLI).
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (fn NotifierFunc) Notify(n Notice) {
	if fn != nil {
		fn(n)
	}
}

type logNotifier struct {
	logger interfaces.Logger
}

// LogNotifier writes notices to logger.
func LogNotifier(logger interfaces.Logger) Notifier {
	return logNotifier{logger: logger}
}

func (n logNotifier) Notify(notice Notice) {
	if n.logger == nil {
		return
	}
	if notice.Kind == NoticeFailure {
		n.logger.Warn("contact.notice", "kind", notice.Kind, "text", notice.Text)
		return
	}
	n.logger.Info("contact.notice", "kind", notice.Kind, "text", notice.Text)
}
