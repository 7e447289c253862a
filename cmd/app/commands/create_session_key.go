package commands

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"
	cryptoService "github.com/allisson/cardtoken/internal/crypto/service"
)

// localKeeperScheme is the gocloud.dev/secrets scheme for a key held in the URI itself.
const localKeeperScheme = "base64key://"

// RunCreateSessionKey prints a SESSION_KEEPER_URI for sealing issuer session keys.
//
// Without keyURI a fresh 32-byte local key is generated (development only). With keyURI
// (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://) the keeper is
// opened and a probe is sealed and opened to prove the issuer can use it.
func RunCreateSessionKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyURI string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	generated := keyURI == ""
	if generated {
		key := make([]byte, cryptoDomain.KeySize)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("failed to generate session keeper key: %w", err)
		}
		keyURI = localKeeperScheme + base64.URLEncoding.EncodeToString(key)
		cryptoDomain.Zero(key)
	}

	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Warn("failed to close session keeper", slog.Any("error", closeErr))
		}
	}()

	if err := probeKeeper(ctx, keeper); err != nil {
		return err
	}

	logger.Info("session keeper verified", slog.Bool("generated", generated))

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"session_keeper_uri": keyURI,
			"generated":          generated,
		})
	}

	if generated {
		_, _ = fmt.Fprintln(writer, "# Local session keeper key. Use a cloud KMS URI in production.")
	}
	_, err = fmt.Fprintf(writer, "SESSION_KEEPER_URI=%q\n", keyURI)
	return err
}

// probeKeeper seals and opens a random value with keeper.
func probeKeeper(ctx context.Context, keeper cryptoDomain.Keeper) error {
	probe := make([]byte, 16)
	if _, err := rand.Read(probe); err != nil {
		return fmt.Errorf("failed to generate keeper probe: %w", err)
	}

	sealed, err := keeper.Encrypt(ctx, probe)
	if err != nil {
		return fmt.Errorf("session keeper cannot seal: %w", err)
	}

	opened, err := keeper.Decrypt(ctx, sealed)
	if err != nil {
		return fmt.Errorf("session keeper cannot open: %w", err)
	}

	if !bytes.Equal(probe, opened) {
		return fmt.Errorf("session keeper round trip mismatch")
	}
	return nil
}
