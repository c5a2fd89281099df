package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophvault/internal/client/config"
	"github.com/dmitrijs2005/gophvault/internal/client/models"
	"github.com/dmitrijs2005/gophvault/internal/client/storage"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fake provider ----

// fakeProvider "hashes" by prefixing and "encrypts" by tagging a base64 body
// with a sequence number, so two encryptions of the same plaintext differ.
type fakeProvider struct {
	mu sync.Mutex

	HashErr    error
	VerifyErr  error
	EncryptErr error
	DecryptErr error

	// Block makes Encrypt wait for ctx, like a stuck provider.
	Block bool

	hashCalls    int
	verifyCalls  int
	encryptCalls int
	decryptCalls int
	seq          int
}

func (f *fakeProvider) Hash(ctx context.Context, password []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hashCalls++
	if f.HashErr != nil {
		return "", f.HashErr
	}
	return "hash:" + string(password), nil
}

func (f *fakeProvider) Verify(ctx context.Context, digest string, password []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.VerifyErr != nil {
		return false, f.VerifyErr
	}
	return digest == "hash:"+string(password), nil
}

func (f *fakeProvider) Encrypt(ctx context.Context, plaintext []byte) (string, error) {
	f.mu.Lock()
	block, err := f.Block, f.EncryptErr
	f.encryptCalls++
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("enc:%d:%s", seq, base64.StdEncoding.EncodeToString(plaintext)), nil
}

func (f *fakeProvider) Decrypt(ctx context.Context, ciphertext string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decryptCalls++
	if f.DecryptErr != nil {
		return nil, f.DecryptErr
	}
	parts := strings.SplitN(ciphertext, ":", 3)
	if len(parts) != 3 || parts[0] != "enc" {
		return nil, fmt.Errorf("%w: not a fake ciphertext", common.ErrDecryptionFailed)
	}
	b, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return b, nil
}

func (f *fakeProvider) set(fn func(f *fakeProvider)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeProvider) calls() (hash, verify, encrypt, decrypt int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hashCalls, f.verifyCalls, f.encryptCalls, f.decryptCalls
}

// ---- fixtures ----

type fixture struct {
	store  *storage.Store
	crypto *fakeProvider
	auth   AuthService
	vault  VaultService
}

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	s := storage.Open(context.Background(), filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, s.Err())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: newStore(t), crypto: &fakeProvider{}}
	repos := storage.NewSQLiteRepositoryManager()
	var cfg config.Config
	cfg.LoadDefaults()
	f.auth = NewAuthService(f.store, repos, f.crypto,
		NewAttemptLimiter(cfg.LoginInterval, cfg.LoginBurst), logging.Discard())
	f.vault = NewVaultService(f.auth, f.store, repos, f.crypto, 0, logging.Discard())
	return f
}

func alice() models.Registration {
	return models.Registration{
		Profile:  models.Profile{Username: "alice", FirstName: "Alice", Email: "alice@example.org"},
		Password: []byte("Sup3r$ecret"),
	}
}

func (f *fixture) registerAlice(t *testing.T) models.Session {
	t.Helper()
	s, err := f.auth.Register(context.Background(), alice())
	require.NoError(t, err)
	return s
}

func bankLogin() models.NewCredential {
	return models.NewCredential{
		Name:     "Bank",
		URL:      "https://bank.example",
		Username: "alice123",
		Password: []byte("hunter2"),
	}
}

func countRows(t *testing.T, s *storage.Store, table string) int {
	t.Helper()
	db, err := s.DB()
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
