package validation

import (
	"encoding/base64"
	"fmt"

	validation "github.com/jellydator/validation"
)

// Base64 validates standard (padded) base64, the encoding of every envelope field.
// Empty strings pass; pair it with validation.Required.
var Base64 = DecodedLength(0)

// DecodedLength validates standard base64 that decodes to exactly n bytes. n == 0
// accepts any length.
func DecodedLength(n int) validation.Rule {
	return validation.By(func(value any) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_base64_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return validation.NewError("validation_base64", "must be valid base64-encoded data")
		}
		if n > 0 && len(decoded) != n {
			return validation.NewError("validation_base64_length", fmt.Sprintf("must decode to %d bytes", n))
		}
		return nil
	})
}
