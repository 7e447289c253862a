// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/cardtoken/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Origin validates a web origin: an http(s) scheme and a host, with no path, query or
// fragment (e.g. "https://shop.example:8443").
var Origin = validation.NewStringRuleWithError(
	IsOrigin,
	validation.NewError("validation_origin", "must be a web origin such as https://shop.example"),
)

// IsOrigin reports whether s is a serialized web origin.
func IsOrigin(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" || u.User != nil {
		return false
	}
	return (u.Path == "" || u.Path == "/") && u.RawQuery == "" && u.Fragment == ""
}
