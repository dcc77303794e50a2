package validation

import (
	"fmt"
	"regexp"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Messages returned by Field. Length messages are formatted with the bound.
const (
	MessageRequired     = "This field is required"
	MessageMinLength    = "Minimum length is %d characters"
	MessageMaxLength    = "Maximum length is %d characters"
	MessageInvalidEmail = "Please enter a valid email address"
	MessageInvalidPhone = "Please enter a valid 10-digit phone number"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// Field validates value against the field descriptor and returns the first
// failing rule's message, or "" when the value is acceptable. Rules run in a
// fixed order: required, minimum length, maximum length, then the email and
// phone formats for their respective types.
func Field(value model.Value, field model.Field) string {
	if field.Required && value.IsEmpty() {
		return MessageRequired
	}
	if field.MinLength > 0 && value.Len() < field.MinLength {
		return fmt.Sprintf(MessageMinLength, field.MinLength)
	}
	if field.MaxLength > 0 && value.Len() > field.MaxLength {
		return fmt.Sprintf(MessageMaxLength, field.MaxLength)
	}

	text := value.String()
	switch field.Type {
	case model.FieldTypeEmail:
		if text != "" && !emailPattern.MatchString(text) {
			return MessageInvalidEmail
		}
	case model.FieldTypeTel:
		if text != "" && !phonePattern.MatchString(text) {
			return MessageInvalidPhone
		}
	}
	return ""
}

// Section validates every field against values and returns the failures keyed
// by field id. A valid section yields an empty, non-nil map.
func Section(values model.Values, fields []model.Field) model.ErrorMap {
	errs := make(model.ErrorMap)
	for _, field := range fields {
		value, ok := values[field.ID]
		if !ok {
			value = model.ZeroValue(field.Type)
		}
		if msg := Field(value, field); msg != "" {
			errs[field.ID] = msg
		}
	}
	return errs
}
