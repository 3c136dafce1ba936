// Package validation turns struct-tag rules into field-level errors that
// handlers can show next to the offending form input.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every Errors value under errors.Is.
var ErrValidation = errors.New("validation failed")

// FieldError describes one rejected field.
type FieldError struct {
	Field   string
	Message string
}

// Errors is a list of field errors. A nil or empty Errors means the input is valid.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrValidation.
func (e Errors) Is(target error) bool {
	return target == ErrValidation
}

// For returns the first message recorded for field, or "".
func (e Errors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Add appends a field error and returns the extended list.
func (e Errors) Add(field, message string) Errors {
	return append(e, FieldError{Field: field, Message: message})
}

// Fields returns a field -> first message map, convenient for templates.
func (e Errors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json name so messages line up with form inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags. It returns nil when s is
// valid and an Errors value otherwise. Misuse of the validator itself (for
// example passing a non-struct) is returned unchanged.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long.", fe.Param())
	default:
		return "Invalid value."
	}
}
