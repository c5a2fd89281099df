package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/client/models"
	"github.com/dmitrijs2005/gophvault/internal/common"
)

// getSimpleText, getTextWithDefault, getConfirmation and getPassword are
// indirections used to facilitate testing. They point to interactive input
// helpers and can be swapped in tests.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getConfirmation    = GetConfirmation
	getPassword        = GetPassword
)

// Register prompts for the account fields and a password (entered twice)
// and creates the account. On success the new user is logged in.
func (a *App) Register(ctx context.Context) error {
	var reg models.Registration
	var err error

	if reg.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	if reg.FirstName, err = getSimpleText(a.reader, "First name (optional)", a.out); err != nil {
		return err
	}
	if reg.LastName, err = getSimpleText(a.reader, "Last name (optional)", a.out); err != nil {
		return err
	}
	if reg.Email, err = getSimpleText(a.reader, "Email (optional)", a.out); err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		return fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}
	reg.Password = password

	ctx, cancel := a.opContext(ctx)
	defer cancel()

	s, err := a.auth.Register(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", s.Profile.DisplayName())
	return nil
}

// Login prompts for credentials, offering the last username as default.
func (a *App) Login(ctx context.Context) error {
	lctx, cancel := a.opContext(ctx)
	last := a.auth.LastUsername(lctx)
	cancel()

	username, err := getTextWithDefault(a.reader, "Username", last, a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel = a.opContext(ctx)
	defer cancel()

	s, err := a.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s.\n", s.Profile.DisplayName())
	return nil
}

// Logout drops the session and the cached credential list.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
