package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError carries one human readable message per invalid field.
type ValidationError struct {
	Fields map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the named field failed validation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// IsValidationError unwraps err into a *ValidationError when possible.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// messageFunc turns a failed validator tag into a field message.
type messageFunc func(fe validator.FieldError) string

// structErrors runs the validator over v and maps failures through messages, keyed by the
// field's json name. Fields without a registered message get a generic one.
func structErrors(v interface{}, messages map[string]messageFunc) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string)}
	for _, fe := range verrs {
		name := jsonName(fe.Field())
		if _, seen := out.Fields[name]; seen {
			continue
		}
		if fn, ok := messages[name]; ok {
			out.Fields[name] = fn(fe)
			continue
		}
		out.Fields[name] = genericMessage(fe)
	}
	return out
}

func genericMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters", fe.Param())
	case "email":
		return "Enter a valid email address"
	default:
		return fmt.Sprintf("Failed on the %q rule", fe.Tag())
	}
}

// jsonName maps Go field names onto the names used in forms and JSON.
func jsonName(field string) string {
	switch field {
	case "FirstName":
		return "first_name"
	case "LastName":
		return "last_name"
	case "AuthorID":
		return "author_id"
	case "PostID":
		return "post_id"
	case "Body":
		return "comment"
	default:
		return strings.ToLower(field)
	}
}
