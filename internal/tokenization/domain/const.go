// Package domain defines the entities of one client-side tokenization attempt: the
// upstream form data, the session context, the card payload, the wire envelope and the
// typed failure taxonomy.
package domain

const (
	// SentinelPrefix marks a hosted-fields value that carries a validation error
	// instead of ciphertext.
	SentinelPrefix = "ERROR"

	// AADDelimiter separates sessionId and origin in the associated data. The issuer
	// derives AAD with the same delimiter; changing it breaks verification.
	AADDelimiter = "|"
)

// AssociatedData derives the AEAD associated data binding an envelope to a session and
// to the page origin that produced it.
func AssociatedData(sessionID, origin string) []byte {
	aad := make([]byte, 0, len(sessionID)+len(AADDelimiter)+len(origin))
	aad = append(aad, sessionID...)
	aad = append(aad, AADDelimiter...)
	aad = append(aad, origin...)
	return aad
}
