// Package cryptox defines the crypto provider the vault depends on and the
// local implementation used by the CLI.
//
// The vault never touches a hash function or a cipher directly: it calls a
// Provider to hash and verify account passwords and to encrypt and decrypt
// stored site passwords. Tests swap in a fake Provider.
package cryptox

import "context"

// Provider is the capability contract required by the vault services.
//
// Digests and ciphertexts are opaque strings safe to persist. Plaintext is
// passed as []byte so callers can wipe it. Every method must return promptly
// once ctx is done.
type Provider interface {
	// Hash returns a one-way digest of password.
	Hash(ctx context.Context, password []byte) (string, error)

	// Verify reports whether password matches digest. A malformed digest is
	// an error, a mismatch is (false, nil).
	Verify(ctx context.Context, digest string, password []byte) (bool, error)

	// Encrypt returns the ciphertext form of plaintext.
	Encrypt(ctx context.Context, plaintext []byte) (string, error)

	// Decrypt reverses Encrypt. Corrupt or foreign ciphertext yields an error
	// wrapping common.ErrDecryptionFailed.
	Decrypt(ctx context.Context, ciphertext string) ([]byte, error)
}
