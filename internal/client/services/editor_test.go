package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophvault/internal/client/models"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditorFixture(t *testing.T) (*fixture, models.Credential) {
	t.Helper()
	f := newFixture(t)
	f.registerAlice(t)
	c, err := f.vault.Create(context.Background(), "alice", bankLogin())
	require.NoError(t, err)
	return f, c
}

func TestEditor_BeginRevealsOnce(t *testing.T) {
	f, c := newEditorFixture(t)
	ctx := context.Background()
	e := NewCredentialEditor(f.vault, c)
	assert.Equal(t, Viewing, e.State())

	require.NoError(t, e.Begin(ctx))
	require.NoError(t, e.Begin(ctx))
	assert.Equal(t, Editing, e.State())

	_, _, _, decrypt := f.crypto.calls()
	assert.Equal(t, 1, decrypt)

	user, pw, err := e.Draft()
	require.NoError(t, err)
	assert.Equal(t, "alice123", user)
	assert.Equal(t, "hunter2", string(pw))
}

func TestEditor_SettersDoNotTouchCrypto(t *testing.T) {
	f, c := newEditorFixture(t)
	e := NewCredentialEditor(f.vault, c)
	require.NoError(t, e.Begin(context.Background()))
	_, _, encBefore, _ := f.crypto.calls()

	for _, r := range "newPass9!" {
		require.NoError(t, e.SetPassword([]byte(string(r))))
	}
	require.NoError(t, e.SetUsername("alice.new"))

	_, _, encAfter, _ := f.crypto.calls()
	assert.Equal(t, encBefore, encAfter)
}

func TestEditor_SaveUpdatesOnceAndReturnsToViewing(t *testing.T) {
	f, c := newEditorFixture(t)
	ctx := context.Background()
	e := NewCredentialEditor(f.vault, c)
	require.NoError(t, e.Begin(ctx))

	buf := []byte("newPass9!")
	require.NoError(t, e.SetPassword(buf))
	require.NoError(t, e.SetUsername("alice.new"))
	common.WipeByteArray(buf)

	_, _, encBefore, _ := f.crypto.calls()
	saved, err := e.Save(ctx)
	require.NoError(t, err)
	_, _, encAfter, _ := f.crypto.calls()
	assert.Equal(t, encBefore+1, encAfter)

	assert.Equal(t, Viewing, e.State())
	assert.Equal(t, saved, e.Credential())
	assert.Equal(t, "alice.new", saved.Username)
	assert.NotEqual(t, c.PasswordCiphertext, saved.PasswordCiphertext)

	_, _, err = e.Draft()
	require.ErrorIs(t, err, ErrNotEditing)

	pw, err := f.vault.Reveal(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, "newPass9!", string(pw), "the draft is a copy of the caller's buffer")
}

func TestEditor_FailedSaveKeepsDraft(t *testing.T) {
	f, c := newEditorFixture(t)
	ctx := context.Background()
	e := NewCredentialEditor(f.vault, c)
	require.NoError(t, e.Begin(ctx))
	require.NoError(t, e.SetPassword([]byte("newPass9!")))
	require.NoError(t, e.SetUsername("alice.new"))

	f.crypto.set(func(p *fakeProvider) { p.EncryptErr = errors.New("provider down") })
	_, err := e.Save(ctx)
	require.ErrorIs(t, err, common.ErrCryptoUnavailable)

	assert.Equal(t, Editing, e.State())
	user, pw, err := e.Draft()
	require.NoError(t, err)
	assert.Equal(t, "alice.new", user)
	assert.Equal(t, "newPass9!", string(pw))
	assert.Equal(t, c, e.Credential())

	f.crypto.set(func(p *fakeProvider) { p.EncryptErr = nil })
	saved, err := e.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice.new", saved.Username)
}

func TestEditor_SaveAfterDeleteStaysEditing(t *testing.T) {
	f, c := newEditorFixture(t)
	ctx := context.Background()
	e := NewCredentialEditor(f.vault, c)
	require.NoError(t, e.Begin(ctx))
	require.NoError(t, f.vault.Delete(ctx, c.ID))

	_, err := e.Save(ctx)
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, Editing, e.State())
}

func TestEditor_CancelRestoresViewWithoutStoreCall(t *testing.T) {
	f, c := newEditorFixture(t)
	ctx := context.Background()
	e := NewCredentialEditor(f.vault, c)
	require.NoError(t, e.Begin(ctx))
	require.NoError(t, e.SetPassword([]byte("draft")))
	_, _, encBefore, decBefore := f.crypto.calls()

	e.Cancel()

	_, _, encAfter, decAfter := f.crypto.calls()
	assert.Equal(t, encBefore, encAfter)
	assert.Equal(t, decBefore, decAfter)
	assert.Equal(t, Viewing, e.State())
	assert.Equal(t, c, e.Credential())

	pw, err := f.vault.Reveal(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(pw))
}

func TestEditor_OperationsOutsideEditing(t *testing.T) {
	f, c := newEditorFixture(t)
	e := NewCredentialEditor(f.vault, c)

	require.ErrorIs(t, e.SetUsername("x"), ErrNotEditing)
	require.ErrorIs(t, e.SetPassword([]byte("x")), ErrNotEditing)
	_, err := e.Save(context.Background())
	require.ErrorIs(t, err, ErrNotEditing)
	e.Cancel()
	assert.Equal(t, Viewing, e.State())
}

func TestEditor_BeginFailureStaysViewing(t *testing.T) {
	f, c := newEditorFixture(t)
	f.auth.Logout(context.Background())

	e := NewCredentialEditor(f.vault, c)
	require.ErrorIs(t, e.Begin(context.Background()), common.ErrUnauthorized)
	assert.Equal(t, Viewing, e.State())
}

func TestEditState_String(t *testing.T) {
	assert.Equal(t, "viewing", Viewing.String())
	assert.Equal(t, "editing", Editing.String())
}
