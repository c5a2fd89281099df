package cryptox

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

// SecretSize is the length of a freshly generated install secret.
const SecretSize = 32

// LoadOrCreateSecret reads the hex-encoded install secret at path. If the
// file does not exist a new random secret is written with 0600 permissions.
// The boolean result reports whether the secret was just created.
func LoadOrCreateSecret(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		secret, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, false, fmt.Errorf("key file %s: %w", path, err)
		}
		if len(secret) < 16 {
			return nil, false, fmt.Errorf("key file %s: secret too short", path)
		}
		return secret, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("read key file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, false, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	encoded, err := common.MakeRandHexString(SecretSize)
	if err != nil {
		return nil, false, fmt.Errorf("generate secret: %w", err)
	}
	secret, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, false, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, false, fmt.Errorf("create key file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(encoded + "\n"); err != nil {
		return nil, false, fmt.Errorf("write key file: %w", err)
	}
	return secret, true, nil
}
