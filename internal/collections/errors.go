package collections

import (
	"errors"
	"fmt"
	"strings"

	"github.com/internetdrew/portfolio-v3/internal/validation"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrEntryInvalid       = errors.New("collection entry invalid")
	ErrCollectionInvalid  = errors.New("collection definition invalid")
)

// BuildError reports a single document that could not join its collection.
type BuildError struct {
	Collection string
	FilePath   string
	Issues     []validation.ValidationIssue
	Cause      error
}

func (e *BuildError) Error() string {
	prefix := fmt.Sprintf("%s: %s", e.Collection, e.FilePath)
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", prefix, e.Cause)
		}
		return prefix + ": invalid entry"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		field := issue.Field()
		if field == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", field, issue.Message))
	}
	return fmt.Sprintf("%s: %s", prefix, strings.Join(parts, "; "))
}

func (e *BuildError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrEntryInvalid}
	}
	return []error{ErrEntryInvalid, e.Cause}
}

// Fields lists the dotted field names that failed validation.
func (e *BuildError) Fields() []string {
	fields := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if field := issue.Field(); field != "" {
			fields = append(fields, field)
		}
	}
	return fields
}

// BuildErrors aggregates every document failure from one build.
type BuildErrors []*BuildError

func (errs BuildErrors) Error() string {
	switch len(errs) {
	case 0:
		return "no build errors"
	case 1:
		return errs[0].Error()
	}
	lines := make([]string, 0, len(errs))
	for _, err := range errs {
		lines = append(lines, err.Error())
	}
	return fmt.Sprintf("%d invalid entries:\n  %s", len(errs), strings.Join(lines, "\n  "))
}

func (errs BuildErrors) Unwrap() []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		out = append(out, err)
	}
	return out
}

// AsBuildErrors extracts the per-file failures from a Build error.
func AsBuildErrors(err error) BuildErrors {
	var errs BuildErrors
	if errors.As(err, &errs) {
		return errs
	}
	var single *BuildError
	if errors.As(err, &single) {
		return BuildErrors{single}
	}
	return nil
}
