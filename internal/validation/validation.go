// Package validation checks request payloads against their `validate` struct tags
// and reduces a failure to the single message the API reports.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/minkgkyaw9899/m-blog-server/internal/models"
)

// RequestBodyRequired is reported when a body is missing or is not a JSON object.
const RequestBodyRequired = "Request Body is required"

var validate = newValidator()

// messages maps "<jsonField>.<tag>" to the message returned to clients.
var messages = map[string]string{
	"title.required":           "title field is required",
	"title.min":                "title field is required",
	"title.max":                "Title must be maximin 255",
	"content.required":         "content field is required",
	"content.min":              "content field is required",
	"email.required":           "email field is required",
	"email.email":              "Invalid email format",
	"email.max":                "email must be at most 255 characters",
	"password.required":        "password field is required",
	"password.min":             "password must be at least 6 characters",
	"password.max":             "password must be lower than 32 characters",
	"name.required":            "name field is required",
	"name.max":                 "name must be at most 255 characters",
	"confirmPassword.required": "confirmPassword field is required",
	"confirmPassword.eqfield":  "The passwords did not match",
	"comment.required":         "comment field is required",
	"comment.min":              "comment field is required",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s and returns a validation AppError carrying the message
// of the first failing field, or nil.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError(RequestBodyRequired)
	}
	return models.NewValidationError(Message(fieldErrs[0]))
}

// Message renders a single field error.
func Message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s field is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return "Invalid email format"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
