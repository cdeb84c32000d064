// Package inputval validates form input structs declared with
// `validate:"..."` and `label:"..."` tags and turns failures into
// user-facing messages, one per field.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is the message for one failing field.
type FieldError struct {
	Field   string // struct field name
	Label   string // label tag, or the field name
	Message string
}

// Result is the outcome of Validate. Errors keep struct field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any field failed.
func (r *Result) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Get returns the message for the named struct field, or "".
func (r *Result) Get(field string) string {
	if r == nil {
		return ""
	}
	for _, e := range r.Errors {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Map returns field name to message, for templates.
func (r *Result) Map() map[string]string {
	m := make(map[string]string)
	if r == nil {
		return m
	}
	for _, e := range r.Errors {
		m[e.Field] = e.Message
	}
	return m
}

// Add records a message for field unless one is already present.
func (r *Result) Add(field, message string) {
	if r.Get(field) != "" {
		return
	}
	r.Errors = append(r.Errors, FieldError{Field: field, Label: field, Message: message})
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		mustRegister(v, "email", func(fl validator.FieldLevel) bool { return IsValidEmail(fl.Field().String()) })
		mustRegister(v, "httpurl", func(fl validator.FieldLevel) bool { return IsValidHTTPURL(fl.Field().String()) })
		mustRegister(v, "isodate", func(fl validator.FieldLevel) bool { return IsValidISODate(fl.Field().String()) })
		mustRegister(v, "country", func(fl validator.FieldLevel) bool { return IsValidCountry(fl.Field().String()) })
		mustRegister(v, "contacttype", func(fl validator.FieldLevel) bool { return IsValidContactType(fl.Field().String()) })
		mustRegister(v, "roletype", func(fl validator.FieldLevel) bool { return IsValidRoleType(fl.Field().String()) })
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("inputval: register %q: %v", tag, err))
	}
}

// Validate checks s, a struct or pointer to struct. Each failing field
// contributes the message of its first failing rule.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: "The form could not be validated."})
		return res
	}
	for _, fe := range verrs {
		name := fe.StructField()
		if res.Get(name) != "" {
			continue
		}
		res.Errors = append(res.Errors, FieldError{
			Field:   name,
			Label:   fe.Field(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return label + " is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more.", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less.", label, fe.Param())
	case "email":
		return "A valid email address is required."
	case "httpurl", "url":
		return label + " must be a valid http(s) URL."
	case "isodate":
		return label + " must be a date in YYYY-MM-DD format."
	case "country":
		return label + " must be a two-letter country code."
	case "contacttype":
		return label + " must be person or organization."
	case "roletype":
		return label + " must be player, partner or HNC member."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return label + " is invalid."
}
