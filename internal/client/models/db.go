// Package models defines the vault's data types: account rows, the
// ephemeral session, stored credentials, and the validated input shapes
// accepted by the services.
package models

// User is one local account row. PasswordDigest never leaves the session
// manager; callers only ever see Profile.
type User struct {
	Profile
	PasswordDigest string
}

// Profile holds the public account fields.
type Profile struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// DisplayName is "First Last" when known, otherwise the username.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.Username
	}
}

// Credential is one stored website login in ciphertext form.
type Credential struct {
	// ID is assigned by the store and stable for the credential's lifetime.
	ID int64

	// OwnerUsername is the vault account that owns this credential.
	OwnerUsername string

	// Name is a display label and may be empty.
	Name string
	URL  string

	// Username is the site login, not the vault account.
	Username string

	// PasswordCiphertext is the crypto provider's output. Never plaintext.
	PasswordCiphertext string
}
