package domain

import (
	"encoding/json"
	"fmt"
)

// CardPayload is the plaintext sealed into an envelope. It lives only in memory for the
// duration of one attempt and must never be logged.
//
// The field order is part of the authenticated byte stream and must not change.
type CardPayload struct {
	PAN            string `json:"pan"`
	CVV            string `json:"cvv"`
	Expiry         string `json:"expiry"`
	CardholderName string `json:"cardholderName"`
}

// Canonical serializes the payload with a stable field order.
func (p CardPayload) Canonical() ([]byte, error) {
	return json.Marshal(p)
}

// String redacts every field so a payload can never leak through %v.
func (p CardPayload) String() string {
	return "CardPayload{redacted}"
}

// ParseCardPayload decodes a canonical payload.
func ParseCardPayload(b []byte) (*CardPayload, error) {
	var p CardPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("failed to decode card payload: %w", err)
	}
	return &p, nil
}
