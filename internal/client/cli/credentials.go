package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	"github.com/dmitrijs2005/gophvault/internal/client/models"
	"github.com/dmitrijs2005/gophvault/internal/client/services"
	"github.com/dmitrijs2005/gophvault/internal/common"
)

// clipboardWrite is a test seam for clipboard.WriteAll.
var clipboardWrite = clipboard.WriteAll

// List prints the owner's credentials without their passwords.
func (a *App) List(ctx context.Context) error {
	p, err := a.auth.Require()
	if err != nil {
		return err
	}
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	items, err := a.vault.List(ctx, p.Username)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No credentials yet. Use 'add' to create one.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tURL\tUSERNAME")
	for _, c := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.URL, c.Username)
	}
	return tw.Flush()
}

// Show prints one credential including its decrypted password.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.parseID(args, "show <id>")
	if err != nil {
		return err
	}
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	c, err := a.lookup(ctx, id)
	if err != nil {
		return err
	}
	pw, err := a.vault.Reveal(ctx, c)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	a.printCredential(c)
	fmt.Fprintf(a.out, "Password: %s\n", pw)
	return nil
}

// Add prompts for a new credential and stores it.
func (a *App) Add(ctx context.Context) error {
	p, err := a.auth.Require()
	if err != nil {
		return err
	}

	var in models.NewCredential
	if in.Name, err = getSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if in.URL, err = getSimpleText(a.reader, "URL", a.out); err != nil {
		return err
	}
	if in.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	if in.Password, err = getPassword("Password", a.out); err != nil {
		return err
	}
	defer common.WipeByteArray(in.Password)

	ctx, cancel := a.opContext(ctx)
	defer cancel()

	c, err := a.vault.Create(ctx, p.Username, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved credential %d.\n", c.ID)
	return nil
}

// Edit changes the username and password of one credential. Name and URL
// are fixed once created. A failed save keeps the draft and offers a retry.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.parseID(args, "edit <id>")
	if err != nil {
		return err
	}

	e, err := a.beginEdit(ctx, id)
	if err != nil {
		return err
	}
	return a.edit(ctx, e)
}

func (a *App) beginEdit(ctx context.Context, id int64) (*services.CredentialEditor, error) {
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	c, err := a.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	e := services.NewCredentialEditor(a.vault, c)
	if err := e.Begin(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (a *App) edit(ctx context.Context, e *services.CredentialEditor) error {
	defer e.Cancel()

	a.printCredential(e.Credential())
	username, current, err := e.Draft()
	if err != nil {
		return err
	}
	common.WipeByteArray(current)

	username, err = getTextWithDefault(a.reader, "Username", username, a.out)
	if err != nil {
		return err
	}
	if err := e.SetUsername(username); err != nil {
		return err
	}

	pw, err := getPassword("New password (empty keeps the current one)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	if len(pw) > 0 {
		if err := e.SetPassword(pw); err != nil {
			return err
		}
	}

	for {
		ok, err := getConfirmation(a.reader, "Save changes?", a.out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Changes discarded.")
			return nil
		}

		sctx, cancel := a.opContext(ctx)
		_, err = e.Save(sctx)
		cancel()
		if err == nil {
			fmt.Fprintln(a.out, "Saved.")
			return nil
		}
		fmt.Fprintln(a.out, "Error:", common.UserMessage(err))
	}
}

// Delete removes one credential after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.parseID(args, "delete <id>")
	if err != nil {
		return err
	}
	if _, err := a.auth.Require(); err != nil {
		return err
	}

	ok, err := getConfirmation(a.reader, fmt.Sprintf("Delete credential %d?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	ctx, cancel := a.opContext(ctx)
	defer cancel()

	if err := a.vault.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// Copy puts the username or the password of one credential on the
// clipboard. The password is the default field.
func (a *App) Copy(ctx context.Context, args []string) error {
	field := "pass"
	if len(args) > 1 {
		field = args[1]
	}
	if field != "user" && field != "pass" {
		fmt.Fprintln(a.out, "Usage: copy <id> [user|pass]")
		return errUsage
	}
	id, err := a.parseID(args, "copy <id> [user|pass]")
	if err != nil {
		return err
	}

	ctx, cancel := a.opContext(ctx)
	defer cancel()

	c, err := a.lookup(ctx, id)
	if err != nil {
		return err
	}

	if field == "user" {
		if err := clipboardWrite(c.Username); err != nil {
			return fmt.Errorf("clipboard: %w", err)
		}
		fmt.Fprintln(a.out, "Username copied to clipboard.")
		return nil
	}

	pw, err := a.vault.Reveal(ctx, c)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	if err := clipboardWrite(string(pw)); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	fmt.Fprintln(a.out, "Password copied to clipboard.")
	return nil
}

// parseID reads a positive id from args[0] and prints usage otherwise.
func (a *App) parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage:", usage)
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintln(a.out, "Usage:", usage)
		return 0, errUsage
	}
	return id, nil
}

// lookup finds id in the projection, listing the vault once if needed.
func (a *App) lookup(ctx context.Context, id int64) (models.Credential, error) {
	p, err := a.auth.Require()
	if err != nil {
		return models.Credential{}, err
	}

	find := func(items []models.Credential) (models.Credential, bool) {
		for _, c := range items {
			if c.ID == id {
				return c, true
			}
		}
		return models.Credential{}, false
	}

	if c, ok := find(a.vault.Projection()); ok {
		return c, nil
	}
	items, err := a.vault.List(ctx, p.Username)
	if err != nil {
		return models.Credential{}, err
	}
	if c, ok := find(items); ok {
		return c, nil
	}
	return models.Credential{}, common.ErrNotFound
}

func (a *App) printCredential(c models.Credential) {
	fmt.Fprintf(a.out, "ID:       %d\n", c.ID)
	fmt.Fprintf(a.out, "Name:     %s\n", c.Name)
	fmt.Fprintf(a.out, "URL:      %s\n", c.URL)
	fmt.Fprintf(a.out, "Username: %s\n", c.Username)
}
