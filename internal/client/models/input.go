package models

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

const (
	maxFieldLen    = 1024
	maxPasswordLen = 4096
)

// Registration is the sign-up form.
type Registration struct {
	Profile
	Password []byte
}

// NewCredential is the create form. Password is plaintext and is wiped by
// the caller once Create returns.
type NewCredential struct {
	Name     string
	URL      string
	Username string
	Password []byte
}

// CredentialUpdate is the edit form. Only the site username and password
// can change; name, url and owner are fixed at creation.
type CredentialUpdate struct {
	ID       int64
	Username string
	Password []byte
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

func checkText(field, v string) error {
	if !utf8.ValidString(v) {
		return validationError("%s is not valid UTF-8", field)
	}
	if strings.ContainsRune(v, 0) {
		return validationError("%s contains a NUL byte", field)
	}
	if len(v) > maxFieldLen {
		return validationError("%s is too long", field)
	}
	return nil
}

func checkPassword(p []byte) error {
	if len(p) == 0 {
		return validationError("password is required")
	}
	if len(p) > maxPasswordLen {
		return validationError("password is too long")
	}
	if !utf8.Valid(p) {
		return validationError("password is not valid UTF-8")
	}
	if bytes.IndexByte(p, 0) >= 0 {
		return validationError("password contains a NUL byte")
	}
	return nil
}

// Validate checks the account fields' shape. Strength is not checked.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return validationError("username is required")
	}
	if r.Username != strings.TrimSpace(r.Username) {
		return validationError("username must not start or end with spaces")
	}
	fields := []struct{ name, v string }{
		{"username", r.Username},
		{"first name", r.FirstName},
		{"last name", r.LastName},
		{"email", r.Email},
	}
	for _, f := range fields {
		if err := checkText(f.name, f.v); err != nil {
			return err
		}
	}
	return checkPassword(r.Password)
}

func (c NewCredential) Validate() error {
	if err := checkText("name", c.Name); err != nil {
		return err
	}
	if err := checkText("url", c.URL); err != nil {
		return err
	}
	if err := checkText("username", c.Username); err != nil {
		return err
	}
	return checkPassword(c.Password)
}

func (u CredentialUpdate) Validate() error {
	if u.ID <= 0 {
		return validationError("credential id must be positive")
	}
	if err := checkText("username", u.Username); err != nil {
		return err
	}
	return checkPassword(u.Password)
}
