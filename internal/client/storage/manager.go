package storage

import (
	"github.com/dmitrijs2005/gophvault/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/gophvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophvault/internal/client/repositories/users"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
)

// RepositoryManager vends repositories bound to a DBTX, so the same service
// code can run on the connection or inside dbx.WithTx.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}

// SQLiteRepositoryManager vends the SQLite implementations.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}
