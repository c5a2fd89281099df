package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

// storeError classifies a repository failure. Domain outcomes pass through,
// everything else becomes common.ErrStore.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrDuplicateUser),
		errors.Is(err, common.ErrStore):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, common.ErrStore, err)
	}
}

// cryptoError classifies a provider failure. Undecryptable data keeps its
// own kind; timeouts and other provider errors become ErrCryptoUnavailable.
func cryptoError(op string, err error) error {
	if errors.Is(err, common.ErrDecryptionFailed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrCryptoUnavailable, err)
}
