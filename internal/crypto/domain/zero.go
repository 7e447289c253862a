package domain

// Zero overwrites key material and decrypted payloads once they are no longer needed.
// Safe on nil and empty slices.
func Zero(b []byte) {
	clear(b)
}
