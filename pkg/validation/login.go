package validation

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// LoginInput is the data entered on the login view. Values are trimmed by
// NewLoginInput before validation.
type LoginInput struct {
	RollNumber string `validate:"required,min=3"`
	Name       string `validate:"required,min=2"`
}

// NewLoginInput trims the raw form values.
func NewLoginInput(rollNumber, name string) LoginInput {
	return LoginInput{
		RollNumber: strings.TrimSpace(rollNumber),
		Name:       strings.TrimSpace(name),
	}
}

var loginMessages = map[string]map[string]string{
	"RollNumber": {
		"required": "Roll number is required",
		"min":      "Roll number must be at least 3 characters",
	},
	"Name": {
		"required": "Name is required",
		"min":      "Name must be at least 2 characters",
	},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Login returns the first validation message for the login input in field
// order, or "" when the input is acceptable.
func Login(input LoginInput) string {
	err := structValidator().Struct(input)
	if err == nil {
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Please check the login details and try again."
	}

	first := fieldErrs[0]
	if byTag, ok := loginMessages[first.StructField()]; ok {
		if msg, ok := byTag[first.Tag()]; ok {
			return msg
		}
	}
	return "Please check the login details and try again."
}
