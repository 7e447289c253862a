package domain

import (
	"github.com/allisson/cardtoken/internal/errors"
)

// Tokenization failure sentinels. Every failure surfaced to a caller matches exactly one
// of these with errors.Is, and KindOf maps it to an ErrorKind.
var (
	// ErrUpstreamValidation indicates hosted fields reported a sentinel or left a field empty.
	ErrUpstreamValidation = errors.Wrap(errors.ErrInvalidInput, "upstream validation failed")

	// ErrKeyFormat indicates the session public key could not be imported.
	ErrKeyFormat = errors.Wrap(errors.ErrInvalidInput, "key format error")

	// ErrKeyGeneration indicates the ephemeral key or nonce could not be generated.
	ErrKeyGeneration = errors.Wrap(errors.ErrInvalidInput, "key generation error")

	// ErrEncryption indicates the AEAD seal failed.
	ErrEncryption = errors.Wrap(errors.ErrInvalidInput, "encryption error")

	// ErrKeyWrap indicates the ephemeral key could not be wrapped under the session key.
	ErrKeyWrap = errors.Wrap(errors.ErrInvalidInput, "key wrap error")

	// ErrSessionAcquisition indicates the session endpoint failed or broke its contract.
	ErrSessionAcquisition = errors.Wrap(errors.ErrUnavailable, "session acquisition error")

	// ErrNetwork indicates a transport failure or an exceeded timeout.
	ErrNetwork = errors.Wrap(errors.ErrUnavailable, "network error")

	// ErrProtocol indicates the tokenize endpoint answered outside its contract.
	ErrProtocol = errors.Wrap(errors.ErrUnavailable, "protocol error")
)

// ErrInvalidEnvelope indicates an envelope that cannot be opened: bad encoding, wrong
// session key, or associated data that does not match. The issuer reports all of these
// identically.
var ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid envelope")

// ErrorKind names a failure class so hosts can branch on it without string matching.
type ErrorKind string

const (
	KindUpstreamValidation ErrorKind = "upstream_validation"
	KindKeyFormat          ErrorKind = "key_format"
	KindKeyGeneration      ErrorKind = "key_generation"
	KindEncryption         ErrorKind = "encryption"
	KindKeyWrap            ErrorKind = "key_wrap"
	KindSessionAcquisition ErrorKind = "session_acquisition"
	KindNetwork            ErrorKind = "network"
	KindProtocol           ErrorKind = "protocol"
	KindUnknown            ErrorKind = "unknown"
)

// kindOrder is checked in order; ErrNetwork precedes the I/O stage kinds so a timeout
// during any call is reported as a network failure.
var kindOrder = []struct {
	kind     ErrorKind
	sentinel error
}{
	{KindUpstreamValidation, ErrUpstreamValidation},
	{KindKeyFormat, ErrKeyFormat},
	{KindKeyGeneration, ErrKeyGeneration},
	{KindEncryption, ErrEncryption},
	{KindKeyWrap, ErrKeyWrap},
	{KindNetwork, ErrNetwork},
	{KindSessionAcquisition, ErrSessionAcquisition},
	{KindProtocol, ErrProtocol},
}

// KindOf classifies err. Unclassified errors are KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var te *TokenizationError
	if errors.As(err, &te) {
		return te.Kind
	}
	for _, k := range kindOrder {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnknown
}

// Sentinel returns the sentinel error for the kind, or nil for KindUnknown.
func (k ErrorKind) Sentinel() error {
	for _, entry := range kindOrder {
		if entry.kind == k {
			return entry.sentinel
		}
	}
	return nil
}

// TokenizationError is the error descriptor handed to the error callback.
type TokenizationError struct {
	Kind ErrorKind
	Err  error
}

// NewTokenizationError classifies err into a TokenizationError. An error that is already
// a TokenizationError is returned unchanged.
func NewTokenizationError(err error) *TokenizationError {
	if err == nil {
		return nil
	}
	var te *TokenizationError
	if errors.As(err, &te) {
		return te
	}
	return &TokenizationError{Kind: KindOf(err), Err: err}
}

func (e *TokenizationError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *TokenizationError) Unwrap() error {
	return e.Err
}
