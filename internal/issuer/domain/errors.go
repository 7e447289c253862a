package domain

import (
	"github.com/allisson/cardtoken/internal/errors"
)

// Issuer-specific error definitions.
var (
	// ErrSessionNotFound indicates the session does not exist, expired, or was already used.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "session not found")

	// ErrSessionExpired indicates a session that expired before it could be stored.
	ErrSessionExpired = errors.Wrap(errors.ErrInvalidInput, "session already expired")

	// ErrKeyIDMismatch indicates the envelope names a key other than the session's.
	ErrKeyIDMismatch = errors.Wrap(errors.ErrInvalidInput, "key id does not match session")

	// ErrInvalidFormatType indicates an unknown token format.
	ErrInvalidFormatType = errors.Wrap(errors.ErrInvalidInput, "invalid token format type")
)
