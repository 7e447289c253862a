package domain

// FormatType is the shape of issued payment tokens.
type FormatType string

const (
	// FormatUUID issues random UUIDs.
	FormatUUID FormatType = "uuid"
	// FormatNumeric issues 16 random digits.
	FormatNumeric FormatType = "numeric"
	// FormatLuhnPreserving issues 16 digits that pass the Luhn check, so tokens fit
	// systems that validate card number shape.
	FormatLuhnPreserving FormatType = "luhn-preserving"
	// FormatAlphanumeric issues "tok_" followed by 24 characters of [A-Za-z0-9].
	FormatAlphanumeric FormatType = "alphanumeric"
)

// ParseFormatType converts a configuration string into a FormatType.
func ParseFormatType(s string) (FormatType, error) {
	switch FormatType(s) {
	case FormatUUID, FormatNumeric, FormatLuhnPreserving, FormatAlphanumeric:
		return FormatType(s), nil
	default:
		return "", ErrInvalidFormatType
	}
}
