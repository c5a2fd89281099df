// Package users persists vault account rows.
//
// The SQLite implementation runs on a dbx.DBTX so the session manager can
// check for an existing username and insert the new row inside one
// transaction. A duplicate username surfaces as common.ErrDuplicateUser, a
// missing one as common.ErrNotFound.
package users
