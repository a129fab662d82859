// Package validation turns go-playground/validator results into a single
// field error that the HTTP layer can render.
package validation

import (
    "errors"
    "fmt"
    "strings"

    "github.com/go-playground/validator/v10"
)

// Error describes a missing or malformed input field.
type Error struct {
    Field   string
    Message string
}

func (e *Error) Error() string {
    if e.Field == "" {
        return e.Message
    }
    return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Field builds an *Error for one field.
func Field(field, message string) *Error {
    return &Error{Field: field, Message: message}
}

// New returns a validator with required-struct checks enabled.
func New() *validator.Validate {
    return validator.New(validator.WithRequiredStructEnabled())
}

// FromValidator converts the first validator field error into an *Error,
// using names to map struct fields to wire names.
func FromValidator(err error, names map[string]string) error {
    if err == nil {
        return nil
    }
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) || len(verrs) == 0 {
        return &Error{Message: err.Error()}
    }
    fe := verrs[0]
    field := names[fe.Field()]
    if field == "" {
        field = strings.ToLower(fe.Field())
    }
    return &Error{Field: field, Message: ruleMessage(fe)}
}

func ruleMessage(fe validator.FieldError) string {
    switch fe.Tag() {
    case "required":
        return "is required"
    case "email":
        return "must be a valid email address"
    case "min":
        return "must be at least " + fe.Param() + " characters"
    case "max":
        return "must be at most " + fe.Param() + " characters"
    case "oneof":
        return "must be one of " + fe.Param()
    }
    return "is invalid"
}
