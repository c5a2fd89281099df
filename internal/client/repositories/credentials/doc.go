// Package credentials provides the persistence layer for stored website
// logins.
//
// # Data Model
//
// Each row holds the display name, url, site username and the password in
// the crypto provider's ciphertext form. Rows are owned by one account
// (owner_username) and every query is scoped to that owner. Deletes are
// hard deletes.
//
// # Consistency
//
// Update and Delete report common.ErrNotFound when no row matched, so a
// caller racing another writer on the same id observes the loser's failure
// instead of a silent no-op. Update uses RETURNING so the caller receives
// the authoritative row in the same statement.
//
// Typical Usage
//
//	repo := credentials.NewSQLiteRepository(db)
//	id, _ := repo.Create(ctx, &c)
//	list, _ := repo.ListByOwner(ctx, "alice")
//	row, _ := repo.Update(ctx, id, "alice", "alice123", ciphertext)
//	_ = repo.Delete(ctx, id, "alice")
package credentials
