package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gophvault/internal/client/config"
	"github.com/dmitrijs2005/gophvault/internal/client/services"
	"github.com/dmitrijs2005/gophvault/internal/client/storage"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/logging"
)

type App struct {
	config *config.Config
	log    logging.Logger
	store  *storage.Store
	repos  storage.RepositoryManager
	crypto cryptox.Provider
	auth   services.AuthService
	vault  services.VaultService
	reader *bufio.Reader
	out    io.Writer
}

// NewApp loads the key file and opens the vault database.
//
// A missing key file is created. A database that cannot be opened is not
// fatal: the failure is logged, vault commands report it, and "reconnect"
// retries.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	secret, created, err := cryptox.LoadOrCreateSecret(c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", c.KeyFile, err)
	}
	if created {
		log.Info(ctx, "created key file", "path", c.KeyFile)
	}
	provider, err := cryptox.NewLocalProviderFromSecret(secret, cryptox.DefaultArgon)
	common.WipeByteArray(secret)
	if err != nil {
		return nil, fmt.Errorf("crypto provider: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.DatabaseDSN), 0o700); err != nil {
		log.Warn(ctx, "cannot create data directory", "path", c.DatabaseDSN, "err", err)
	}
	store := storage.Open(ctx, c.DatabaseDSN)
	if err := store.Err(); err != nil {
		log.Error(ctx, "vault database unavailable", "dsn", c.DatabaseDSN, "err", err)
	}

	return newApp(c, log, store, provider, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, log logging.Logger, store *storage.Store, crypto cryptox.Provider,
	reader *bufio.Reader, out io.Writer) *App {
	repos := storage.NewSQLiteRepositoryManager()
	auth := services.NewAuthService(store, repos, crypto,
		services.NewAttemptLimiter(c.LoginInterval, c.LoginBurst), log)
	vault := services.NewVaultService(auth, store, repos, crypto, c.WriteTimeout, log)

	return &App{
		config: c,
		log:    log,
		store:  store,
		repos:  repos,
		crypto: crypto,
		auth:   auth,
		vault:  vault,
		reader: reader,
		out:    out,
	}
}

// Run blocks in the REPL until the user exits or ctx is done, then logs out
// and closes the database.
func (a *App) Run(ctx context.Context) {
	defer a.Close(context.WithoutCancel(ctx))

	fmt.Fprintln(a.out, "Welcome to gophvault (type 'help' for commands)")
	if err := a.store.Err(); err != nil {
		fmt.Fprintln(a.out, "Warning:", common.UserMessage(fmt.Errorf("%w: %v", common.ErrStore, err)),
			"(use 'reconnect' to retry)")
	} else {
		a.checkKey(ctx)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close(ctx context.Context) {
	a.auth.Logout(ctx)
	if err := a.store.Close(); err != nil {
		a.log.Warn(ctx, "failed to close database", "err", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.Current().Authenticated
}

func (a *App) getStatus() string {
	s := a.auth.Current()
	if !s.Authenticated {
		return ""
	}
	return fmt.Sprintf(" (%s)", s.Profile.Username)
}

// opContext bounds one service call by the configured command timeout.
// Prompts are read outside of it.
func (a *App) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.CommandTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.CommandTimeout)
}

// Reconnect retries opening the database after a failed start.
func (a *App) Reconnect(ctx context.Context) error {
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	if err := a.store.Reinit(ctx); err != nil {
		a.log.Error(ctx, "reconnect failed", "dsn", a.store.DSN(), "err", err)
		return err
	}
	fmt.Fprintf(a.out, "Vault database %s is available.\n", a.store.DSN())
	a.checkKey(ctx)
	return nil
}

// checkKey warns when the key file cannot read this vault.
func (a *App) checkKey(ctx context.Context) {
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	created, err := services.CheckKey(ctx, a.store, a.repos, a.crypto)
	switch {
	case err == nil:
		if created {
			a.log.Info(ctx, "key check stored")
		}
	case errors.Is(err, common.ErrDecryptionFailed):
		a.log.Warn(ctx, "key file does not match vault", "err", err)
		fmt.Fprintln(a.out, "Warning: the key file does not belong to this vault; stored passwords cannot be revealed.")
	default:
		a.log.Warn(ctx, "key check failed", "err", err)
	}
}
