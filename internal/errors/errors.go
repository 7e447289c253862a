// Package errors holds the sentinel errors shared by the client and the issuer. Domain
// packages wrap them with context and the HTTP layer maps them to status codes, so
// callers test with Is instead of matching strings.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a session that does not exist, expired or was already used.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates an operation raced with another one, such as an abandoned
	// tokenization attempt.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates a request, form or envelope that failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates a missing or unknown bearer credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the caller exhausted its request budget.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates a remote collaborator could not be reached or did not
	// honour its contract.
	ErrUnavailable = errors.New("unavailable")
)

// Wrap prefixes err with message, keeping err in the chain. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
