package cryptox

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastArgon = ArgonParams{Memory: 64, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

func newProvider(t *testing.T) *LocalProvider {
	t.Helper()
	p, err := NewLocalProviderFromSecret([]byte("0123456789abcdef0123456789abcdef"), fastArgon)
	require.NoError(t, err)
	return p
}

func TestDeriveKey_DeterministicAndDistinct(t *testing.T) {
	k1, err := DeriveKey([]byte("secret-a"))
	require.NoError(t, err)
	k2, err := DeriveKey([]byte("secret-a"))
	require.NoError(t, err)
	k3, err := DeriveKey([]byte("secret-b"))
	require.NoError(t, err)

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestNewLocalProvider_BadKey(t *testing.T) {
	_, err := NewLocalProvider([]byte("short"), fastArgon)
	require.Error(t, err)
}

func TestHashVerify(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	digest, err := p.Hash(ctx, []byte("Sup3r$ecret"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=64,t=1,p=1$"), digest)
	assert.NotContains(t, digest, "Sup3r$ecret")

	ok, err := p.Verify(ctx, digest, []byte("Sup3r$ecret"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Verify(ctx, digest, []byte("wrong"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_SaltedPerCall(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	a, err := p.Hash(ctx, []byte("same"))
	require.NoError(t, err)
	b, err := p.Hash(ctx, []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHash_DoesNotRetainCallerBuffer(t *testing.T) {
	p := newProvider(t)
	pw := []byte("wipe-me")
	_, err := p.Hash(context.Background(), pw)
	require.NoError(t, err)
	assert.Equal(t, "wipe-me", string(pw), "caller's buffer must stay untouched")
}

func TestVerify_MalformedDigest(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	for _, d := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$bogus$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$c2FsdA$",
	} {
		_, err := p.Verify(ctx, d, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidDigest, "digest %q", d)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	ct, err := p.Encrypt(ctx, []byte("hunter2"))
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", ct)

	ct2, err := p.Encrypt(ctx, []byte("hunter2"))
	require.NoError(t, err)
	assert.NotEqual(t, ct, ct2, "fresh nonce per encryption")

	pt, err := p.Decrypt(ctx, ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("hunter2"), pt)
}

func TestDecrypt_Failures(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	ct, err := p.Encrypt(ctx, []byte("hunter2"))
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(ct)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	other, err := NewLocalProviderFromSecret([]byte("another-secret-another-secret!!!"), fastArgon)
	require.NoError(t, err)

	cases := map[string]struct {
		p  *LocalProvider
		ct string
	}{
		"not base64": {p, "%%%"},
		"too short":  {p, base64.StdEncoding.EncodeToString([]byte("abc"))},
		"tampered":   {p, tampered},
		"wrong key":  {other, ct},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.p.Decrypt(ctx, c.ct)
			require.ErrorIs(t, err, common.ErrDecryptionFailed)
		})
	}
}

func TestProvider_HonoursCancelledContext(t *testing.T) {
	p := newProvider(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Hash(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = p.Verify(ctx, "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$a2V5", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = p.Encrypt(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = p.Decrypt(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ReturnsOnDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := run(ctx, func() (int, error) {
		<-release
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLoadOrCreateSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vault.key")

	s1, created, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, s1, SecretSize)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(s1)+"\n", string(data))

	s2, created, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, bytes.Equal(s1, s2))
}

func TestLoadOrCreateSecret_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.key")
	require.NoError(t, os.WriteFile(bad, []byte("not-hex"), 0o600))
	_, _, err := LoadOrCreateSecret(bad)
	require.Error(t, err)

	short := filepath.Join(dir, "short.key")
	require.NoError(t, os.WriteFile(short, []byte(hex.EncodeToString([]byte("abc"))), 0o600))
	_, _, err = LoadOrCreateSecret(short)
	require.Error(t, err)
}
