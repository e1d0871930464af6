// Package validation converts request binding failures into field-level error maps.
//
// Errors render as a JSON object keyed by field name, each holding a list of messages:
//
//	{"title": ["This field is required."], "price": ["A valid number is required."]}
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldErrors is the key used when an error cannot be attributed to a single field.
const NonFieldErrors = "non_field_errors"

// Errors maps field names to validation messages.
type Errors map[string][]string

// Add appends a message for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Error implements error.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns an Errors value with one message.
func Field(field, msg string) Errors {
	return Errors{field: {msg}}
}

// Setup registers JSON tag names on gin's validator so errors report "time_minutes"
// rather than "TimeMinutes". It must run before the router handles requests.
func Setup() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	v.RegisterTagNameFunc(jsonTagName)
	return nil
}

func jsonTagName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := fld.Tag.Get(tag)
		if i := strings.IndexByte(name, ','); i >= 0 {
			name = name[:i]
		}
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// FromBindError converts an error from gin's ShouldBind* into field-level errors.
// Errors it does not recognise are reported under NonFieldErrors.
func FromBindError(err error) Errors {
	out := Errors{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out.Add(fieldPath(fe), friendlyMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		out.Add(typeErr.Field, typeMessage(typeErr))
		return out
	}

	var synErr *json.SyntaxError
	if errors.As(err, &synErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		out.Add(NonFieldErrors, "JSON parse error.")
		return out
	}

	out.Add(NonFieldErrors, "Invalid data.")
	return out
}

// fieldPath turns "RecipeWriteRequest.tags[0].name" into "tags[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gte":
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "lte":
		return "Ensure this value is less than or equal to " + fe.Param() + "."
	case "url":
		return "Enter a valid URL."
	default:
		return "Invalid value."
	}
}

func typeMessage(e *json.UnmarshalTypeError) string {
	switch e.Type.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.String:
		return "Not a valid string."
	case reflect.Slice:
		return fmt.Sprintf("Expected a list of items but got type %q.", e.Value)
	default:
		return "Invalid value."
	}
}
