package domain

// EnvelopeRequest is the only representation of card data allowed to leave the client.
// Binary fields are standard base64.
type EnvelopeRequest struct {
	KeyID      string
	IV         string
	WrappedKey string
	CipherText string
	SessionID  string
}

// TokenizationResult is handed to the success callback.
type TokenizationResult struct {
	Token string `json:"token"`
}
