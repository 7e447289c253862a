// Package dto provides data transfer objects shared by the tokenization client and the
// issuer HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
	customValidation "github.com/allisson/cardtoken/internal/validation"
)

// CreateSessionRequest asks the issuer for a per-session wrapping key bound to an origin.
type CreateSessionRequest struct {
	Origin string `json:"origin"`
}

// Validate checks if the create session request is valid.
func (r *CreateSessionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Origin,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 2048),
			customValidation.Origin,
		),
	)
}

// TokenizeRequest is the hybrid envelope exchanged for a payment token.
type TokenizeRequest struct {
	KID        string `json:"kid"`
	IV         string `json:"iv"`         // Base64 AEAD nonce
	WrappedKey string `json:"wrappedKey"` // Base64 RSA-OAEP wrapped AEAD key
	CipherText string `json:"cipherText"` // Base64 sealed card payload, tag appended
	SessionID  string `json:"sessionId"`
}

// Validate checks if the tokenize request is valid.
func (r *TokenizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.KID,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.IV,
			validation.Required,
			customValidation.DecodedLength(cryptoDomain.NonceSize),
		),
		validation.Field(&r.WrappedKey,
			validation.Required,
			customValidation.Base64,
		),
		validation.Field(&r.CipherText,
			validation.Required,
			customValidation.Base64,
		),
		validation.Field(&r.SessionID,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// NewTokenizeRequest maps a domain envelope to its wire form.
func NewTokenizeRequest(envelope *tokenizationDomain.EnvelopeRequest) TokenizeRequest {
	return TokenizeRequest{
		KID:        envelope.KeyID,
		IV:         envelope.IV,
		WrappedKey: envelope.WrappedKey,
		CipherText: envelope.CipherText,
		SessionID:  envelope.SessionID,
	}
}

// ToEnvelope maps the wire form back to a domain envelope.
func (r *TokenizeRequest) ToEnvelope() *tokenizationDomain.EnvelopeRequest {
	return &tokenizationDomain.EnvelopeRequest{
		KeyID:      r.KID,
		IV:         r.IV,
		WrappedKey: r.WrappedKey,
		CipherText: r.CipherText,
		SessionID:  r.SessionID,
	}
}
