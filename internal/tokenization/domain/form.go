package domain

import (
	"fmt"
	"strings"
)

// UpstreamFormData is what the hosted-fields component hands over on submit.
// Card number and CVV are already ciphertext (or a sentinel-prefixed error string).
type UpstreamFormData struct {
	CardholderName string `json:"cardholderName"`
	EncCardNumber  string `json:"encCreditcardNumber"`
	EncCVV         string `json:"encCvv"`
	ExpiryDate     string `json:"expiryDate"` // MM/YY
}

// CheckSentinels reports the first pre-encrypted field that carries the upstream error
// sentinel. The returned error wraps ErrUpstreamValidation.
func (f *UpstreamFormData) CheckSentinels() error {
	if strings.HasPrefix(f.EncCardNumber, SentinelPrefix) {
		return fmt.Errorf("%w: card number rejected by hosted fields", ErrUpstreamValidation)
	}
	if strings.HasPrefix(f.EncCVV, SentinelPrefix) {
		return fmt.Errorf("%w: cvv rejected by hosted fields", ErrUpstreamValidation)
	}
	return nil
}

// CheckRequired reports fields the upstream component left empty.
func (f *UpstreamFormData) CheckRequired() error {
	var missing []string
	if f.EncCardNumber == "" {
		missing = append(missing, "card number")
	}
	if f.EncCVV == "" {
		missing = append(missing, "cvv")
	}
	if f.ExpiryDate == "" {
		missing = append(missing, "expiry date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrUpstreamValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Payload assembles the card payload sealed into the envelope.
func (f *UpstreamFormData) Payload() CardPayload {
	return CardPayload{
		PAN:            f.EncCardNumber,
		CVV:            f.EncCVV,
		Expiry:         f.ExpiryDate,
		CardholderName: strings.TrimSpace(f.CardholderName),
	}
}
