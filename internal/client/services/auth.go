package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/client/models"
	"github.com/dmitrijs2005/gophvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophvault/internal/client/storage"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/google/uuid"
)

// AuthService defines session operations for the CLI.
//
// Contract:
//   - Register: create the account row and authenticate as it.
//   - Login: verify the password against the stored digest and authenticate.
//   - Logout: reset to the unauthenticated state, always succeeds.
//   - Current / Require: read the session; Require fails with ErrUnauthorized.
//   - OnReset: subscribe to session changes (login, register, logout).
//   - LastUsername: the last account that logged in on this vault, or "".
//
// Returned sessions never carry the password digest.
type AuthService interface {
	Register(ctx context.Context, reg models.Registration) (models.Session, error)
	Login(ctx context.Context, username string, password []byte) (models.Session, error)
	Logout(ctx context.Context) models.Session
	Current() models.Session
	Require() (models.Profile, error)
	OnReset(fn func(models.Session))
	LastUsername(ctx context.Context) string
}

type authService struct {
	store   *storage.Store
	repos   storage.RepositoryManager
	crypto  cryptox.Provider
	limiter *AttemptLimiter
	log     logging.Logger

	mu      sync.RWMutex
	session models.Session
	hooks   []func(models.Session)
}

// NewAuthService constructs an unauthenticated AuthService. limiter may be
// nil to disable login throttling.
func NewAuthService(store *storage.Store, repos storage.RepositoryManager, crypto cryptox.Provider,
	limiter *AttemptLimiter, log logging.Logger) AuthService {
	return &authService{
		store:   store,
		repos:   repos,
		crypto:  crypto,
		limiter: limiter,
		log:     log.With("service", "auth"),
	}
}

// Register creates the account and logs in as it. The existence check, the
// hash and the insert run in one transaction, so a duplicate never writes.
func (a *authService) Register(ctx context.Context, reg models.Registration) (models.Session, error) {
	if err := reg.Validate(); err != nil {
		return models.Session{}, err
	}
	db, err := a.store.DB()
	if err != nil {
		return models.Session{}, err
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := a.repos.Users(tx)

		exists, err := users.Exists(ctx, reg.Username)
		if err != nil {
			return storeError("check user", err)
		}
		if exists {
			return common.ErrDuplicateUser
		}

		digest, err := a.crypto.Hash(ctx, reg.Password)
		if err != nil {
			return cryptoError("hash password", err)
		}

		u := &models.User{Profile: reg.Profile, PasswordDigest: digest}
		if err := users.Create(ctx, u); err != nil {
			return storeError("insert user", err)
		}
		return nil
	})
	if err != nil {
		a.log.Info(ctx, "register failed", "user", reg.Username, "err", err)
		if !errors.Is(err, common.ErrCryptoUnavailable) {
			err = storeError("register", err)
		}
		return models.Session{}, err
	}

	a.log.Info(ctx, "user registered", "user", reg.Username)
	return a.authenticate(ctx, reg.Profile), nil
}

// Login authenticates username. An unknown user and a wrong password are
// distinct errors; callers decide how much of that to show.
func (a *authService) Login(ctx context.Context, username string, password []byte) (models.Session, error) {
	if a.limiter.blocked(username) {
		a.log.Warn(ctx, "login throttled", "user", username)
		return models.Session{}, common.ErrTooManyAttempts
	}

	db, err := a.store.DB()
	if err != nil {
		return models.Session{}, err
	}

	u, err := a.repos.Users(db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			a.log.Info(ctx, "login failed", "user", username, "reason", "unknown user")
			return models.Session{}, common.ErrUserNotFound
		}
		return models.Session{}, storeError("find user", err)
	}

	ok, err := a.crypto.Verify(ctx, u.PasswordDigest, password)
	if err != nil {
		return models.Session{}, cryptoError("verify password", err)
	}
	if !ok {
		a.limiter.fail(username)
		a.log.Info(ctx, "login failed", "user", username, "reason", "bad password")
		return models.Session{}, common.ErrInvalidCredentials
	}

	a.limiter.reset(username)
	a.log.Info(ctx, "user logged in", "user", username)
	return a.authenticate(ctx, u.Profile), nil
}

func (a *authService) Logout(ctx context.Context) models.Session {
	prev := a.Current()
	a.setSession(models.Session{})
	if prev.Authenticated {
		a.log.Info(ctx, "user logged out", "user", prev.Profile.Username)
	}
	return a.Current()
}

func (a *authService) Current() models.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

func (a *authService) Require() (models.Profile, error) {
	s := a.Current()
	if !s.Authenticated {
		return models.Profile{}, common.ErrUnauthorized
	}
	return s.Profile, nil
}

func (a *authService) OnReset(fn func(models.Session)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, fn)
}

func (a *authService) LastUsername(ctx context.Context) string {
	db, err := a.store.DB()
	if err != nil {
		return ""
	}
	v, ok, err := a.repos.Metadata(db).Get(ctx, metadata.KeyLastUsername)
	if err != nil {
		a.log.Debug(ctx, "last username unavailable", "err", err)
		return ""
	}
	if !ok {
		return ""
	}
	return string(v)
}

func (a *authService) authenticate(ctx context.Context, p models.Profile) models.Session {
	s := models.Session{
		ID:            uuid.NewString(),
		Authenticated: true,
		Profile:       p,
		StartedAt:     time.Now(),
	}
	a.setSession(s)
	a.rememberUsername(ctx, p.Username)
	return s
}

// setSession swaps the session and notifies subscribers under the same lock,
// so no reader sees the new session before the projection was reset.
func (a *authService) setSession(s models.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = s
	for _, fn := range a.hooks {
		fn(s)
	}
}

func (a *authService) rememberUsername(ctx context.Context, username string) {
	db, err := a.store.DB()
	if err == nil {
		err = a.repos.Metadata(db).Set(ctx, metadata.KeyLastUsername, []byte(username))
	}
	if err != nil {
		a.log.Warn(ctx, "failed to remember username", "err", err)
	}
}

var _ AuthService = (*authService)(nil)
