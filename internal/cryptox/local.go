package cryptox

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// ErrInvalidDigest is returned by Verify for digests it cannot parse.
var ErrInvalidDigest = errors.New("invalid password digest")

// ArgonParams tunes argon2id hashing.
type ArgonParams struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     int
	KeyLen      uint32
}

// DefaultArgon matches the argon2 crate defaults (m=19456, t=2, p=1).
var DefaultArgon = ArgonParams{
	Memory:      19 * 1024,
	Time:        2,
	Parallelism: 1,
	SaltLen:     16,
	KeyLen:      32,
}

const keyInfo = "gophvault credential encryption v1"

// DeriveKey expands the install secret into a 32-byte AES-256 key.
func DeriveKey(secret []byte) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyInfo)), key); err != nil {
		return nil, err
	}
	return key, nil
}

// LocalProvider hashes with argon2id and encrypts with AES-256-GCM.
// Ciphertext is base64(nonce || sealed). It is safe for concurrent use.
type LocalProvider struct {
	aead   cipher.AEAD
	params ArgonParams
}

// NewLocalProvider builds a provider from a 16, 24 or 32 byte AES key.
func NewLocalProvider(key []byte, params ArgonParams) (*LocalProvider, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm init: %w", err)
	}
	return &LocalProvider{aead: aead, params: params}, nil
}

// NewLocalProviderFromSecret derives the key from secret with DeriveKey.
func NewLocalProviderFromSecret(secret []byte, params ArgonParams) (*LocalProvider, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)
	return NewLocalProvider(key, params)
}

// run executes fn on its own goroutine so a done ctx releases the caller
// even while argon2 is still burning CPU.
func run[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (p *LocalProvider) Hash(ctx context.Context, password []byte) (string, error) {
	pw := common.CloneBytes(password)
	return run(ctx, func() (string, error) {
		defer common.WipeByteArray(pw)
		salt := common.GenerateRandByteArray(p.params.SaltLen)
		key := argon2.IDKey(pw, salt, p.params.Time, p.params.Memory, p.params.Parallelism, p.params.KeyLen)
		return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
			argon2.Version, p.params.Memory, p.params.Time, p.params.Parallelism,
			base64.RawStdEncoding.EncodeToString(salt),
			base64.RawStdEncoding.EncodeToString(key),
		), nil
	})
}

func (p *LocalProvider) Verify(ctx context.Context, digest string, password []byte) (bool, error) {
	pw := common.CloneBytes(password)
	return run(ctx, func() (bool, error) {
		defer common.WipeByteArray(pw)

		// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
		parts := strings.Split(digest, "$")
		if len(parts) != 6 || parts[1] != "argon2id" {
			return false, ErrInvalidDigest
		}
		var version int
		if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
			return false, ErrInvalidDigest
		}
		var m, t uint32
		var par uint8
		if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &par); err != nil {
			return false, ErrInvalidDigest
		}
		salt, err := base64.RawStdEncoding.DecodeString(parts[4])
		if err != nil {
			return false, ErrInvalidDigest
		}
		want, err := base64.RawStdEncoding.DecodeString(parts[5])
		if err != nil || len(want) == 0 {
			return false, ErrInvalidDigest
		}

		got := argon2.IDKey(pw, salt, t, m, par, uint32(len(want)))
		return subtle.ConstantTimeCompare(got, want) == 1, nil
	})
}

func (p *LocalProvider) Encrypt(ctx context.Context, plaintext []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	nonce := common.GenerateRandByteArray(p.aead.NonceSize())
	sealed := p.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (p *LocalProvider) Decrypt(ctx context.Context, ciphertext string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding", common.ErrDecryptionFailed)
	}
	ns := p.aead.NonceSize()
	if len(raw) < ns+p.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrDecryptionFailed)
	}
	plaintext, err := p.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
