package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/cardtoken/internal/cardvalidation"
	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
	cryptoService "github.com/allisson/cardtoken/internal/crypto/service"
	issuerDomain "github.com/allisson/cardtoken/internal/issuer/domain"
	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

type issuerUseCase struct {
	store     SessionStore
	keeper    cryptoDomain.Keeper
	opener    EnvelopeOpener
	generator TokenGenerator
	cfg       Config
	random    io.Reader
	now       func() time.Time
	logger    *slog.Logger
}

// NewIssuerUseCase creates the issuer use case. keeper seals session private keys at rest.
func NewIssuerUseCase(
	store SessionStore,
	keeper cryptoDomain.Keeper,
	opener EnvelopeOpener,
	generator TokenGenerator,
	cfg Config,
	logger *slog.Logger,
) IssuerUseCase {
	if cfg.KeyBits == 0 {
		cfg.KeyBits = cryptoDomain.DefaultWrappingKeyBits
	}
	return &issuerUseCase{
		store:     store,
		keeper:    keeper,
		opener:    opener,
		generator: generator,
		cfg:       cfg,
		random:    rand.Reader,
		now:       time.Now,
		logger:    logger,
	}
}

// CreateSession mints the key pair, seals the PKCS#8 private key and stores the session.
func (u *issuerUseCase) CreateSession(ctx context.Context, origin string) (*SessionKey, error) {
	key, err := cryptoService.GenerateUnwrappingKey(u.random, u.cfg.KeyBits)
	if err != nil {
		return nil, err
	}

	der, err := key.MarshalPrivateKey()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(der)

	sealed, err := u.keeper.Encrypt(ctx, der)
	if err != nil {
		return nil, fmt.Errorf("failed to seal session key: %w", err)
	}

	publicKeyPEM, err := key.PublicKeyPEM()
	if err != nil {
		return nil, err
	}

	session := issuerDomain.NewSession(origin, sealed, u.now(), u.cfg.SessionTTL)
	if err := u.store.Save(ctx, session); err != nil {
		return nil, err
	}

	u.logger.Info("session created",
		slog.String("session_id", session.ID),
		slog.String("key_id", session.KeyID),
		slog.String("origin", origin),
	)
	return &SessionKey{Session: session, PublicKeyPEM: publicKeyPEM}, nil
}

// Tokenize takes the session first, so a failed attempt still burns it.
func (u *issuerUseCase) Tokenize(ctx context.Context, envelope *tokenizationDomain.EnvelopeRequest) (string, error) {
	session, err := u.store.Take(ctx, envelope.SessionID)
	if err != nil {
		return "", err
	}
	if envelope.KeyID != session.KeyID {
		return "", issuerDomain.ErrKeyIDMismatch
	}

	der, err := u.keeper.Decrypt(ctx, session.SealedPrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to unseal session key: %w", err)
	}
	defer cryptoDomain.Zero(der)

	key, err := cryptoService.ParseUnwrappingKey(der)
	if err != nil {
		return "", err
	}

	payload, err := u.opener.Open(key, envelope, session.Origin)
	if err != nil {
		// The cause stays in the log; callers only learn the envelope was rejected.
		u.logger.Warn("envelope rejected",
			slog.String("session_id", session.ID),
			slog.Any("error", err),
		)
		return "", tokenizationDomain.ErrInvalidEnvelope
	}

	if err := cardvalidation.ValidatePayload(*payload, u.now()); err != nil {
		return "", err
	}

	token, err := u.generator.Generate()
	if err != nil {
		return "", err
	}

	u.logger.Info("token issued",
		slog.String("session_id", session.ID),
	)
	return token, nil
}

func (u *issuerUseCase) Ready(ctx context.Context) error {
	return u.store.Ping(ctx)
}
