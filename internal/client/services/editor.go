package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophvault/internal/client/models"
	"github.com/dmitrijs2005/gophvault/internal/common"
)

// EditState is the mode of a CredentialEditor.
type EditState int

const (
	// Viewing shows the stored, ciphertext-backed credential.
	Viewing EditState = iota
	// Editing holds a plaintext draft.
	Editing
)

func (s EditState) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// ErrNotEditing is returned by draft operations outside Editing.
var ErrNotEditing = errors.New("credential is not being edited")

// CredentialEditor drives one credential through Viewing and Editing.
//
// Begin reveals the password once and keeps the plaintext in a draft.
// Setters only touch the draft. Save issues exactly one Update; on failure
// the editor stays in Editing with the draft intact. Cancel wipes the draft
// and never touches the store.
type CredentialEditor struct {
	vault VaultService

	mu       sync.Mutex
	state    EditState
	view     models.Credential
	username string
	password []byte
}

func NewCredentialEditor(vault VaultService, c models.Credential) *CredentialEditor {
	return &CredentialEditor{vault: vault, view: c}
}

func (e *CredentialEditor) State() EditState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Credential returns the ciphertext-backed view.
func (e *CredentialEditor) Credential() models.Credential {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Begin enters Editing. Calling it while already editing is a no-op.
func (e *CredentialEditor) Begin(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Editing {
		return nil
	}

	plaintext, err := e.vault.Reveal(ctx, e.view)
	if err != nil {
		return err
	}
	e.username = e.view.Username
	e.password = plaintext
	e.state = Editing
	return nil
}

// Draft returns copies of the draft fields.
func (e *CredentialEditor) Draft() (string, []byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return "", nil, ErrNotEditing
	}
	return e.username, common.CloneBytes(e.password), nil
}

func (e *CredentialEditor) SetUsername(username string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return ErrNotEditing
	}
	e.username = username
	return nil
}

// SetPassword copies password into the draft; the caller keeps its buffer.
func (e *CredentialEditor) SetPassword(password []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return ErrNotEditing
	}
	common.WipeByteArray(e.password)
	e.password = common.CloneBytes(password)
	return nil
}

// Save persists the draft and returns to Viewing with the stored value.
func (e *CredentialEditor) Save(ctx context.Context) (models.Credential, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return models.Credential{}, ErrNotEditing
	}

	c, err := e.vault.Update(ctx, models.CredentialUpdate{
		ID:       e.view.ID,
		Username: e.username,
		Password: e.password,
	})
	if err != nil {
		return models.Credential{}, err
	}

	e.discard()
	e.view = c
	return c, nil
}

// Cancel drops the draft and restores the pre-edit view.
func (e *CredentialEditor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.discard()
}

func (e *CredentialEditor) discard() {
	common.WipeByteArray(e.password)
	e.password = nil
	e.username = ""
	e.state = Viewing
}
