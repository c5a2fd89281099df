package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/client/models"
	"github.com/dmitrijs2005/gophvault/internal/client/storage"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/logging"
)

// DefaultWriteTimeout bounds a store write once it has been detached from
// the caller's context.
const DefaultWriteTimeout = 10 * time.Second

// VaultService manages the authenticated owner's credentials.
//
// Contract:
//   - List: all rows of owner in store order, ciphertext form.
//   - Reveal: decrypt the stored row behind credential.ID.
//   - Create: encrypt, insert, return the stored value.
//   - Update: re-encrypt and replace username/password of one row.
//   - Delete: remove one row.
//   - Projection: the in-memory view kept in step with the calls above.
//
// Every call fails with ErrUnauthorized without a session, or when owner is
// not the session's user.
type VaultService interface {
	List(ctx context.Context, owner string) ([]models.Credential, error)
	Reveal(ctx context.Context, c models.Credential) ([]byte, error)
	Create(ctx context.Context, owner string, in models.NewCredential) (models.Credential, error)
	Update(ctx context.Context, in models.CredentialUpdate) (models.Credential, error)
	Delete(ctx context.Context, id int64) error
	Projection() []models.Credential
}

type vaultService struct {
	auth         AuthService
	store        *storage.Store
	repos        storage.RepositoryManager
	crypto       cryptox.Provider
	locks        *keyedMutex
	writeTimeout time.Duration
	log          logging.Logger

	mu        sync.RWMutex
	sessionID string
	items     []models.Credential
}

// NewVaultService constructs a VaultService bound to auth's session. The
// projection is cleared whenever the session changes.
func NewVaultService(auth AuthService, store *storage.Store, repos storage.RepositoryManager,
	crypto cryptox.Provider, writeTimeout time.Duration, log logging.Logger) VaultService {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	v := &vaultService{
		auth:         auth,
		store:        store,
		repos:        repos,
		crypto:       crypto,
		locks:        newKeyedMutex(),
		writeTimeout: writeTimeout,
		log:          log.With("service", "vault"),
	}
	auth.OnReset(v.reset)
	return v
}

// authorize returns the session if it is authenticated and owns owner.
// An empty owner means "the session's user".
func (v *vaultService) authorize(owner string) (models.Session, error) {
	s := v.auth.Current()
	if !s.Authenticated {
		return models.Session{}, common.ErrUnauthorized
	}
	if owner != "" && owner != s.Profile.Username {
		return models.Session{}, fmt.Errorf("%w: vault belongs to another user", common.ErrUnauthorized)
	}
	return s, nil
}

// writeContext detaches a store write from the caller, so an abandoned call
// still learns the authoritative outcome before it is reported.
func (v *vaultService) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), v.writeTimeout)
}

func (v *vaultService) List(ctx context.Context, owner string) ([]models.Credential, error) {
	s, err := v.authorize(owner)
	if err != nil {
		return nil, err
	}
	db, err := v.store.DB()
	if err != nil {
		return nil, err
	}

	rows, err := v.repos.Credentials(db).ListByOwner(ctx, s.Profile.Username)
	if err != nil {
		return nil, storeError("list credentials", err)
	}

	// A Create that lands between the query and this swap is missing from
	// the projection until the next List.
	v.apply(s.ID, func(items []models.Credential) []models.Credential {
		return slices.Clone(rows)
	})
	return rows, nil
}

// Reveal decrypts the password of the stored row with c's id. A deleted row
// is ErrNotFound even if c still carries its old ciphertext.
func (v *vaultService) Reveal(ctx context.Context, c models.Credential) ([]byte, error) {
	s, err := v.authorize(c.OwnerUsername)
	if err != nil {
		return nil, err
	}
	if c.ID <= 0 {
		return nil, fmt.Errorf("%w: credential id must be positive", common.ErrValidation)
	}
	db, err := v.store.DB()
	if err != nil {
		return nil, err
	}

	row, err := v.repos.Credentials(db).GetByID(ctx, c.ID, s.Profile.Username)
	if err != nil {
		return nil, storeError("load credential", err)
	}

	plaintext, err := v.crypto.Decrypt(ctx, row.PasswordCiphertext)
	if err != nil {
		v.log.Warn(ctx, "reveal failed", "id", c.ID, "err", err)
		return nil, cryptoError("decrypt password", err)
	}
	return plaintext, nil
}

func (v *vaultService) Create(ctx context.Context, owner string, in models.NewCredential) (models.Credential, error) {
	s, err := v.authorize(owner)
	if err != nil {
		return models.Credential{}, err
	}
	if err := in.Validate(); err != nil {
		return models.Credential{}, err
	}
	db, err := v.store.DB()
	if err != nil {
		return models.Credential{}, err
	}

	ciphertext, err := v.crypto.Encrypt(ctx, in.Password)
	if err != nil {
		return models.Credential{}, cryptoError("encrypt password", err)
	}

	c := models.Credential{
		OwnerUsername:      s.Profile.Username,
		Name:               in.Name,
		URL:                in.URL,
		Username:           in.Username,
		PasswordCiphertext: ciphertext,
	}

	wctx, cancel := v.writeContext(ctx)
	defer cancel()
	id, err := v.repos.Credentials(db).Create(wctx, &c)
	if err != nil {
		return models.Credential{}, storeError("insert credential", err)
	}
	c.ID = id

	v.apply(s.ID, func(items []models.Credential) []models.Credential {
		return append(items, c)
	})
	v.log.Info(ctx, "credential created", "id", id)
	return c, nil
}

// Update always re-encrypts the password, even when it did not change.
func (v *vaultService) Update(ctx context.Context, in models.CredentialUpdate) (models.Credential, error) {
	s, err := v.authorize("")
	if err != nil {
		return models.Credential{}, err
	}
	if err := in.Validate(); err != nil {
		return models.Credential{}, err
	}
	db, err := v.store.DB()
	if err != nil {
		return models.Credential{}, err
	}

	unlock := v.locks.Lock(in.ID)
	defer unlock()

	ciphertext, err := v.crypto.Encrypt(ctx, in.Password)
	if err != nil {
		return models.Credential{}, cryptoError("encrypt password", err)
	}

	wctx, cancel := v.writeContext(ctx)
	defer cancel()
	row, err := v.repos.Credentials(db).Update(wctx, in.ID, s.Profile.Username, in.Username, ciphertext)
	if err != nil {
		return models.Credential{}, storeError("update credential", err)
	}

	v.apply(s.ID, func(items []models.Credential) []models.Credential {
		if i := indexOf(items, row.ID); i >= 0 {
			items[i] = *row
		}
		return items
	})
	v.log.Info(ctx, "credential updated", "id", row.ID)
	return *row, nil
}

func (v *vaultService) Delete(ctx context.Context, id int64) error {
	s, err := v.authorize("")
	if err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("%w: credential id must be positive", common.ErrValidation)
	}
	db, err := v.store.DB()
	if err != nil {
		return err
	}

	unlock := v.locks.Lock(id)
	defer unlock()

	wctx, cancel := v.writeContext(ctx)
	defer cancel()
	if err := v.repos.Credentials(db).Delete(wctx, id, s.Profile.Username); err != nil {
		return storeError("delete credential", err)
	}

	v.apply(s.ID, func(items []models.Credential) []models.Credential {
		if i := indexOf(items, id); i >= 0 {
			items = slices.Delete(items, i, i+1)
		}
		return items
	})
	v.log.Info(ctx, "credential deleted", "id", id)
	return nil
}

// Projection returns a copy of the in-memory credential set. It is empty
// while no session is authenticated.
func (v *vaultService) Projection() []models.Credential {
	s := v.auth.Current()

	v.mu.RLock()
	defer v.mu.RUnlock()
	if !s.Authenticated || s.ID != v.sessionID {
		return []models.Credential{}
	}
	return slices.Clone(v.items)
}

func (v *vaultService) reset(s models.Session) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sessionID = s.ID
	v.items = nil
}

// apply mutates the projection unless the session changed while the store
// call was in flight.
func (v *vaultService) apply(sessionID string, fn func([]models.Credential) []models.Credential) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sessionID != sessionID {
		return
	}
	v.items = fn(v.items)
}

func indexOf(items []models.Credential, id int64) int {
	return slices.IndexFunc(items, func(c models.Credential) bool { return c.ID == id })
}

var _ VaultService = (*vaultService)(nil)
