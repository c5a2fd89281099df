package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophvault/internal/client/storage"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
)

var keyCheckPlaintext = []byte("gophvault key check")

// CheckKey makes sure the provider's key can read this vault. The first call
// on a fresh vault stores an encrypted canary and reports created. Later
// calls decrypt it; a foreign key file yields ErrDecryptionFailed.
func CheckKey(ctx context.Context, store *storage.Store, repos storage.RepositoryManager,
	crypto cryptox.Provider) (created bool, err error) {
	db, err := store.DB()
	if err != nil {
		return false, err
	}
	meta := repos.Metadata(db)

	stored, ok, err := meta.Get(ctx, metadata.KeyCheck)
	if err != nil {
		return false, storeError("load key check", err)
	}

	if !ok {
		ciphertext, err := crypto.Encrypt(ctx, keyCheckPlaintext)
		if err != nil {
			return false, cryptoError("encrypt key check", err)
		}
		if err := meta.Set(ctx, metadata.KeyCheck, []byte(ciphertext)); err != nil {
			return false, storeError("save key check", err)
		}
		return true, nil
	}

	plaintext, err := crypto.Decrypt(ctx, string(stored))
	if err != nil {
		return false, cryptoError("decrypt key check", err)
	}
	defer common.WipeByteArray(plaintext)
	if subtle.ConstantTimeCompare(plaintext, keyCheckPlaintext) != 1 {
		return false, fmt.Errorf("key check: %w", common.ErrDecryptionFailed)
	}
	return false, nil
}
