package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// ProfileFormInput mirrors the client-facing form schema: the fields a user
// can edit before submission.
type ProfileFormInput struct {
	Username     string `validate:"required,min=3,max=30,username"`
	Bio          string `validate:"max=160"`
	ProfileImage string `validate:"omitempty,url"`
}

// ProfileCandidate is the server-facing superset: form fields merged with
// identity-provider data. FullName and PhoneNumber are provider snapshots
// and carry no constraints beyond their types.
type ProfileCandidate struct {
	ID          string `validate:"required"`
	Email       string `validate:"required,email"`
	Username    string `validate:"required,min=3,max=30,username"`
	Bio         string `validate:"max=160"`
	FullName    string
	PhoneNumber string
	ImageURL    string `validate:"omitempty,url"`
}

// FieldError is a single failed field rule with a user-facing message.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// messages maps field+tag to a user-facing message. Unlisted combinations
// fall back to a generic per-field message.
var messages = map[string]string{
	"Username.required": "Username is required",
	"Username.min":      "Username must be at least 3 characters",
	"Username.max":      "Username must not exceed 30 characters",
	"Username.username": "Username may only contain letters, numbers, and underscores",
	"Bio.max":           "Bio must not exceed 160 characters",
	"Email.required":    "Email is required",
	"Email.email":       "Invalid email address",
	"ID.required":       "ID is required",
	"ImageURL.url":      "Invalid URL",
	"ProfileImage.url":  "Invalid URL",
}

// ValidateProfileForm checks input against the client form schema. It
// returns nil or the first failing rule as a *FieldError.
func ValidateProfileForm(in ProfileFormInput) error {
	return firstError(validate.Struct(in))
}

// ValidateProfileCandidate checks a merged candidate record against the
// server schema. It returns nil or the first failing rule as a *FieldError.
func ValidateProfileCandidate(c ProfileCandidate) error {
	return firstError(validate.Struct(c))
}

func firstError(err error) error {
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return err
	}
	first := fieldErrs[0]
	msg, ok := messages[first.StructField()+"."+first.Tag()]
	if !ok {
		msg = fmt.Sprintf("Invalid value for %s", first.StructField())
	}
	return &FieldError{Field: first.StructField(), Message: msg}
}
