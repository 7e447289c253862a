package domain

import (
	"fmt"
	"strings"
)

// SessionContext is the key material and identity of one tokenization attempt.
// It is owned by the attempt and never cached.
type SessionContext struct {
	KeyID        string
	PublicKeyPEM string
	SessionID    string
	Origin       string
}

// Validate reports required fields the session endpoint failed to supply.
func (s *SessionContext) Validate() error {
	var missing []string
	if s.KeyID == "" {
		missing = append(missing, "keyId")
	}
	if s.PublicKeyPEM == "" {
		missing = append(missing, "publicKeyPem")
	}
	if s.SessionID == "" {
		missing = append(missing, "sessionId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: response missing %s", ErrSessionAcquisition, strings.Join(missing, ", "))
	}
	return nil
}

// AssociatedData returns the AAD binding an envelope to this session.
func (s *SessionContext) AssociatedData() []byte {
	return AssociatedData(s.SessionID, s.Origin)
}
