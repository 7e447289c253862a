// Package cardvalidation checks card form fields (cardholder name, expiry and the
// hosted-fields ciphertexts) and computes the Luhn checksum for issued tokens.
package cardvalidation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
	customValidation "github.com/allisson/cardtoken/internal/validation"
)

const (
	minNameLength = 2
	maxNameLength = 50

	// maxExpiryYears is how far into the future an expiry may lie.
	maxExpiryYears = 20

	minCardCiphertextLength = 10
	minCVVCiphertextLength  = 5

	minPANDigits = 13
	maxPANDigits = 19
)

var (
	namePattern   = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

// CardholderName validates a trimmed name of 2 to 50 letters, spaces, hyphens or apostrophes.
var CardholderName = validation.By(func(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_cardholder_name_type", "must be a string")
	}
	name := strings.TrimSpace(s)
	switch {
	case name == "":
		return validation.NewError("validation_cardholder_name_required", "name is required")
	case len(name) < minNameLength:
		return validation.NewError("validation_cardholder_name_short", "name must be at least 2 characters")
	case len(name) > maxNameLength:
		return validation.NewError("validation_cardholder_name_long", "name is too long")
	case !namePattern.MatchString(name):
		return validation.NewError("validation_cardholder_name_chars", "name contains invalid characters")
	}
	return nil
})

// Expiry returns a rule validating an MM/YY expiry relative to now: a real month, not
// expired, and at most 20 years ahead.
func Expiry(now time.Time) validation.Rule {
	return validation.By(func(value any) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_expiry_type", "must be a string")
		}
		return checkExpiry(s, now)
	})
}

func checkExpiry(s string, now time.Time) error {
	if !expiryPattern.MatchString(s) {
		return validation.NewError("validation_expiry_format", "invalid date format (use MM/YY)")
	}
	month, _ := strconv.Atoi(s[:2])
	year, _ := strconv.Atoi(s[3:])
	if month < 1 || month > 12 {
		return validation.NewError("validation_expiry_month", "invalid month (must be 01-12)")
	}

	currentYear := now.Year() % 100
	currentMonth := int(now.Month())
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return validation.NewError("validation_expiry_expired", "card has expired")
	}
	if year > currentYear+maxExpiryYears {
		return validation.NewError("validation_expiry_far", "expiry date is too far in the future")
	}
	return nil
}

// ciphertext returns a rule for a hosted-fields ciphertext: not a sentinel and at least
// minLength characters.
func ciphertext(label string, minLength int) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if strings.HasPrefix(s, tokenizationDomain.SentinelPrefix) {
			return validation.NewError("validation_ciphertext_sentinel", "invalid "+label)
		}
		if len(s) < minLength {
			return validation.NewError("validation_ciphertext_length", fmt.Sprintf("invalid %s format", label))
		}
		return nil
	})
}

// EncryptedCardNumber validates the hosted-fields card number ciphertext.
var EncryptedCardNumber = ciphertext("card number", minCardCiphertextLength)

// EncryptedCVV validates the hosted-fields CVV ciphertext.
var EncryptedCVV = ciphertext("cvv", minCVVCiphertextLength)

// ValidateForm checks every field of an upstream form at time now. The returned error
// wraps ErrInvalidInput.
func ValidateForm(form tokenizationDomain.UpstreamFormData, now time.Time) error {
	return customValidation.WrapValidationError(validation.Errors{
		"cardholderName":      validation.Validate(form.CardholderName, CardholderName),
		"encCreditcardNumber": validation.Validate(form.EncCardNumber, validation.Required, EncryptedCardNumber),
		"encCvv":              validation.Validate(form.EncCVV, validation.Required, EncryptedCVV),
		"expiryDate":          validation.Validate(form.ExpiryDate, validation.Required, Expiry(now)),
	}.Filter())
}

// ValidatePayload checks a decrypted card payload at time now. The returned error wraps
// ErrInvalidInput.
func ValidatePayload(payload tokenizationDomain.CardPayload, now time.Time) error {
	return customValidation.WrapValidationError(validation.Errors{
		"cardholderName": validation.Validate(payload.CardholderName, CardholderName),
		"pan":            validation.Validate(payload.PAN, validation.Required, EncryptedCardNumber),
		"cvv":            validation.Validate(payload.CVV, validation.Required, EncryptedCVV),
		"expiry":         validation.Validate(payload.Expiry, validation.Required, Expiry(now)),
	}.Filter())
}

// LuhnValid reports whether number passes the Luhn checksum.
func LuhnValid(number string) bool {
	digits := onlyDigits(number)
	if len(digits) < minPANDigits || len(digits) > maxPANDigits {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
