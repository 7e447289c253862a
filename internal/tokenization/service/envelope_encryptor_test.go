package service

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
	cryptoService "github.com/allisson/cardtoken/internal/crypto/service"
	"github.com/allisson/cardtoken/internal/tokenization/domain"
)

type failingReader struct {
	remaining int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, errors.New("entropy exhausted")
	}
	n := min(len(p), r.remaining)
	r.remaining -= n
	return n, nil
}

type stubWrapper struct {
	err error
}

func (w *stubWrapper) Wrap(_ io.Reader, key []byte) ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return bytes.Clone(key), nil
}

type stubAEADManager struct {
	err error
}

func (m *stubAEADManager) CreateCipher(_ []byte, _ cryptoDomain.Algorithm) (cryptoService.AEAD, error) {
	return nil, m.err
}

type envelopeFixture struct {
	key     *cryptoService.UnwrappingKey
	session *domain.SessionContext
	payload domain.CardPayload
}

func newEnvelopeFixture(t *testing.T) envelopeFixture {
	t.Helper()

	key, err := cryptoService.GenerateUnwrappingKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemText, err := key.PublicKeyPEM()
	require.NoError(t, err)

	return envelopeFixture{
		key: key,
		session: &domain.SessionContext{
			KeyID:        "kid_1",
			PublicKeyPEM: pemText,
			SessionID:    "sess_123",
			Origin:       "https://shop.example",
		},
		payload: domain.CardPayload{
			PAN:            "hf-enc-4111",
			CVV:            "hf-enc-123",
			Expiry:         "12/30",
			CardholderName: "Jane Doe",
		},
	}
}

func TestEnvelopeEncryptor_Encrypt(t *testing.T) {
	fx := newEnvelopeFixture(t)

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run("RoundTrip_"+string(alg), func(t *testing.T) {
			encryptor := NewEnvelopeEncryptor(cryptoService.NewAEADManager(), alg, rand.Reader)
			opener := NewEnvelopeOpener(cryptoService.NewAEADManager(), alg)

			first, err := encryptor.Encrypt(fx.session, fx.payload)
			require.NoError(t, err)
			second, err := encryptor.Encrypt(fx.session, fx.payload)
			require.NoError(t, err)

			assert.NotEqual(t, first.CipherText, second.CipherText)
			assert.NotEqual(t, first.WrappedKey, second.WrappedKey)
			assert.NotEqual(t, first.IV, second.IV)

			for _, envelope := range []*domain.EnvelopeRequest{first, second} {
				assert.Equal(t, "kid_1", envelope.KeyID)
				assert.Equal(t, "sess_123", envelope.SessionID)

				iv, err := base64.StdEncoding.DecodeString(envelope.IV)
				require.NoError(t, err)
				assert.Len(t, iv, 12)

				opened, err := opener.Open(fx.key, envelope, fx.session.Origin)
				require.NoError(t, err)
				assert.Equal(t, fx.payload, *opened)
			}
		})
	}

	t.Run("Error_KeyFormat", func(t *testing.T) {
		encryptor := NewEnvelopeEncryptor(cryptoService.NewAEADManager(), cryptoDomain.AESGCM, rand.Reader)
		session := *fx.session
		session.PublicKeyPEM = "-----BEGIN PUBLIC KEY-----\nnot-a-key\n-----END PUBLIC KEY-----"

		envelope, err := encryptor.Encrypt(&session, fx.payload)
		assert.ErrorIs(t, err, domain.ErrKeyFormat)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeyFormat)
		assert.Nil(t, envelope)
	})
}

func TestEnvelopeEncryptor_Seal_Failures(t *testing.T) {
	fx := newEnvelopeFixture(t)

	t.Run("Error_KeyGeneration_Key", func(t *testing.T) {
		encryptor := NewEnvelopeEncryptor(cryptoService.NewAEADManager(), cryptoDomain.AESGCM, &failingReader{})

		envelope, err := encryptor.Seal(&stubWrapper{}, fx.session, fx.payload)
		assert.ErrorIs(t, err, domain.ErrKeyGeneration)
		assert.Nil(t, envelope)
	})

	t.Run("Error_KeyGeneration_Nonce", func(t *testing.T) {
		encryptor := NewEnvelopeEncryptor(
			cryptoService.NewAEADManager(),
			cryptoDomain.AESGCM,
			&failingReader{remaining: cryptoDomain.KeySize},
		)

		envelope, err := encryptor.Seal(&stubWrapper{}, fx.session, fx.payload)
		assert.ErrorIs(t, err, domain.ErrKeyGeneration)
		assert.Contains(t, err.Error(), "nonce")
		assert.Nil(t, envelope)
	})

	t.Run("Error_Encryption", func(t *testing.T) {
		encryptor := NewEnvelopeEncryptor(
			&stubAEADManager{err: cryptoDomain.ErrUnsupportedAlgorithm},
			cryptoDomain.AESGCM,
			rand.Reader,
		)

		envelope, err := encryptor.Seal(&stubWrapper{}, fx.session, fx.payload)
		assert.ErrorIs(t, err, domain.ErrEncryption)
		assert.Nil(t, envelope)
	})

	t.Run("Error_KeyWrap", func(t *testing.T) {
		encryptor := NewEnvelopeEncryptor(cryptoService.NewAEADManager(), cryptoDomain.AESGCM, rand.Reader)

		envelope, err := encryptor.Seal(
			&stubWrapper{err: cryptoDomain.ErrKeyWrapFailed},
			fx.session,
			fx.payload,
		)
		assert.ErrorIs(t, err, domain.ErrKeyWrap)
		assert.Equal(t, domain.KindKeyWrap, domain.KindOf(err))
		assert.Nil(t, envelope)
	})
}

func TestEnvelopeOpener_BindingIntegrity(t *testing.T) {
	fx := newEnvelopeFixture(t)
	encryptor := NewEnvelopeEncryptor(cryptoService.NewAEADManager(), cryptoDomain.AESGCM, rand.Reader)
	opener := NewEnvelopeOpener(cryptoService.NewAEADManager(), cryptoDomain.AESGCM)

	envelope, err := encryptor.Encrypt(fx.session, fx.payload)
	require.NoError(t, err)

	flip := func(s string, i int) string {
		b := []byte(s)
		b[i] ^= 0x01
		return string(b)
	}

	t.Run("every byte of sessionId is bound", func(t *testing.T) {
		for i := range len(envelope.SessionID) {
			tampered := *envelope
			tampered.SessionID = flip(envelope.SessionID, i)

			_, err := opener.Open(fx.key, &tampered, fx.session.Origin)
			assert.ErrorIs(t, err, domain.ErrInvalidEnvelope, "byte %d", i)
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed, "byte %d", i)
		}
	})

	t.Run("every byte of origin is bound", func(t *testing.T) {
		for i := range len(fx.session.Origin) {
			_, err := opener.Open(fx.key, envelope, flip(fx.session.Origin, i))
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed, "byte %d", i)
		}
	})

	t.Run("delimiter shift is not interoperable", func(t *testing.T) {
		shifted := *envelope
		shifted.SessionID = "sess_123|https:"
		_, err := opener.Open(fx.key, &shifted, "//shop.example")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		raw, err := base64.StdEncoding.DecodeString(envelope.CipherText)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xFF
		tampered := *envelope
		tampered.CipherText = base64.StdEncoding.EncodeToString(raw)

		_, err = opener.Open(fx.key, &tampered, fx.session.Origin)
		assert.ErrorIs(t, err, domain.ErrInvalidEnvelope)
	})

	t.Run("wrong session key", func(t *testing.T) {
		other, err := cryptoService.GenerateUnwrappingKey(rand.Reader, 2048)
		require.NoError(t, err)

		_, err = opener.Open(other, envelope, fx.session.Origin)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyUnwrapFailed)
	})

	t.Run("malformed fields", func(t *testing.T) {
		cases := map[string]func(e *domain.EnvelopeRequest){
			"iv not base64":         func(e *domain.EnvelopeRequest) { e.IV = "***" },
			"iv wrong length":       func(e *domain.EnvelopeRequest) { e.IV = base64.StdEncoding.EncodeToString(make([]byte, 16)) },
			"wrappedKey not base64": func(e *domain.EnvelopeRequest) { e.WrappedKey = "***" },
			"cipherText not base64": func(e *domain.EnvelopeRequest) { e.CipherText = "***" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				tampered := *envelope
				mutate(&tampered)
				_, err := opener.Open(fx.key, &tampered, fx.session.Origin)
				assert.ErrorIs(t, err, domain.ErrInvalidEnvelope)
			})
		}
	})
}
