// Package common defines the sentinel errors and small helpers shared by the
// vault services, the repositories and the CLI. Callers should use errors.Is
// to match these values; services wrap them with context using %w.
package common

import "errors"

var (
	// Session errors.
	ErrUnauthorized       = errors.New("unauthorized")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")

	// Input shape errors.
	ErrValidation = errors.New("validation error")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrStore    = errors.New("store error")

	// Crypto provider errors.
	ErrCryptoUnavailable = errors.New("crypto provider unavailable")
	ErrDecryptionFailed  = errors.New("decryption failed")
)

// UserMessage renders err as a short message suitable for the terminal.
// Unknown users and bad passwords render the same message, so the prompt
// does not reveal which usernames exist.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidCredentials):
		return "invalid username or password"
	case errors.Is(err, ErrTooManyAttempts):
		return "too many failed attempts, try again later"
	case errors.Is(err, ErrUnauthorized):
		return "please log in first"
	case errors.Is(err, ErrDuplicateUser):
		return "username already taken"
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrNotFound):
		return "credential not found"
	case errors.Is(err, ErrDecryptionFailed):
		return "stored password cannot be decrypted with this key file"
	case errors.Is(err, ErrCryptoUnavailable):
		return "encryption is unavailable, try again"
	case errors.Is(err, ErrStore):
		return "vault database is unavailable"
	default:
		return "unexpected error"
	}
}
