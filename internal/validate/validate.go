// Package validate checks request inputs against their struct tags and
// reports failures per JSON field name.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their json name so violations match the wire shape.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldErrors maps a JSON field name to its violation code, e.g.
// "invalid length". It is the structured detail of a bad-request error.
type FieldErrors struct {
	Fields map[string]string `json:"fields"`
}

// Error is returned by Struct when one or more fields fail validation.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Detail returns the wire payload for the error.
func (e *Error) Detail() *FieldErrors {
	return &FieldErrors{Fields: e.Fields}
}

// Struct validates s. It returns nil, a *Error describing every failing
// field, or a plain error if s cannot be validated at all.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		// Keep the first violation reported for a field.
		if _, ok := fields[fe.Field()]; !ok {
			fields[fe.Field()] = code(fe.Tag())
		}
	}
	return &Error{Fields: fields}
}

// code turns a validator tag into the violation code sent to clients.
func code(tag string) string {
	switch tag {
	case "min", "max", "len":
		return "invalid length"
	case "email":
		return "invalid email"
	case "url", "http_url":
		return "invalid url"
	default:
		return "invalid " + tag
	}
}
