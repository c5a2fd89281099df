// Package metadata stores small local settings of the vault file as
// key/value pairs (last logged-in username, key-check canary).
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyLastUsername = "last_username"
	KeyCheck        = "key_check"
)

type Repository interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
