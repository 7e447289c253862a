package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/cardtoken/internal/crypto/domain"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperSchemes lists the URI schemes OpenKeeper accepts for sealing session keys.
var KeeperSchemes = []string{"awskms", "azurekeyvault", "base64key", "gcpkms", "hashivault"}

type kmsService struct{}

// NewKMSService returns a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens the keeper named by keyURI, e.g. "awskms:///alias/cardtoken" or
// "base64key://<url-safe base64 of 32 bytes>". A scheme outside KeeperSchemes fails with
// ErrUnsupportedKeeper before any provider is contacted.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.Keeper, error) {
	u, err := url.Parse(keyURI)
	if err != nil || !slices.Contains(KeeperSchemes, u.Scheme) {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedKeeper, redactKeyURI(keyURI))
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// redactKeyURI drops everything after the scheme so local key material never reaches
// an error message or a log line.
func redactKeyURI(keyURI string) string {
	u, err := url.Parse(keyURI)
	if err != nil || u.Scheme == "" {
		return "<unparseable>"
	}
	return u.Scheme + "://..."
}
