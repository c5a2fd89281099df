// Package services contains the vault's application services.
//
// AuthService is the session manager: it registers and logs in the single
// local user and owns the process-lifetime Session. VaultService is the
// credential manager: it encrypts on write, decrypts on demand, and keeps an
// in-memory projection of the owner's credentials in step with the store.
// CredentialEditor drives the Viewing/Editing cycle of one credential.
//
// Service failures wrap one of the sentinels in internal/common, so callers
// only need errors.Is. The editor adds ErrNotEditing for misuse.
package services
