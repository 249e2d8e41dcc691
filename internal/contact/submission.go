package contact

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Field names a submission field.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// Fields lists the submission fields in form order.
func Fields() []Field {
	return []Field{FieldName, FieldEmail, FieldMessage}
}

const (
	MessageNameInvalid    = "But... how will I know who you are?"
	MessageEmailInvalid   = "I'll need this to reply to you."
	MessageMessageInvalid = "Can you really send a message without... a message?"
)

// Submission is the transient payload of one contact attempt.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate applies the field rules. Every rule on a field shares the same
// user-facing message.
func (s Submission) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name,
			validation.Required.Error(MessageNameInvalid),
			validation.RuneLength(2, 0).Error(MessageNameInvalid),
		),
		validation.Field(&s.Email,
			validation.Required.Error(MessageEmailInvalid),
			is.EmailFormat.Error(MessageEmailInvalid),
		),
		validation.Field(&s.Message,
			validation.Required.Error(MessageMessageInvalid),
			validation.RuneLength(2, 0).Error(MessageMessageInvalid),
		),
	)
}

// Get returns the value of field.
func (s Submission) Get(field Field) (string, bool) {
	switch field {
	case FieldName:
		return s.Name, true
	case FieldEmail:
		return s.Email, true
	case FieldMessage:
		return s.Message, true
	}
	return "", false
}

func (s *Submission) set(field Field, value string) bool {
	switch field {
	case FieldName:
		s.Name = value
	case FieldEmail:
		s.Email = value
	case FieldMessage:
		s.Message = value
	default:
		return false
	}
	return true
}

// FieldErrors flattens a Validate error into one message per field. Errors
// that are not field errors are reported under the empty key.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		if fieldErr == nil {
			continue
		}
		var nested validation.Error
		if errors.As(fieldErr, &nested) {
			out[field] = nested.Message()
			continue
		}
		out[field] = fieldErr.Error()
	}
	return out
}

// InvalidFields returns the sorted names of the fields in errs.
func InvalidFields(errs map[string]string) []string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
