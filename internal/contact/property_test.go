//go:build property

package contact

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSubmissionRulesProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("names of two or more letters pass", prop.ForAll(
		func(name string) bool {
			sub := Submission{Name: name, Email: "jo@example.com", Message: "Hi"}
			return sub.Validate() == nil
		},
		gen.RegexMatch(`[A-Za-z]{2,30}`),
	))

	properties.Property("one letter names fail on name only", prop.ForAll(
		func(name string) bool {
			errs := FieldErrors(Submission{Name: name, Email: "jo@example.com", Message: "Hi"}.Validate())
			return len(errs) == 1 && errs["name"] == MessageNameInvalid
		},
		gen.RegexMatch(`[A-Za-z]`),
	))

	properties.Property("addresses without @ fail on email only", prop.ForAll(
		func(email string) bool {
			errs := FieldErrors(Submission{Name: "Jo", Email: email, Message: "Hi"}.Validate())
			return len(errs) == 1 && errs["email"] == MessageEmailInvalid
		},
		gen.RegexMatch(`[a-z]{1,10}\.[a-z]{2,4}`),
	))

	properties.Property("invalid submissions never reach the transport", prop.ForAll(
		func(message string) bool {
			transport := &stubTransport{result: Result{Success: true}}
			form := NewForm(transport)
			if err := form.Fill(Submission{Name: "Jo", Email: "jo@example.com", Message: message}); err != nil {
				return false
			}
			outcome, err := form.Submit(context.Background())
			return err == nil && outcome.State == StateInvalid && transport.calls.Load() == 0
		},
		gen.RegexMatch(`[a-z]?`),
	))

	properties.TestingRun(t)
}
