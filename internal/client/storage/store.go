package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

// Store holds the vault's connection and remembers why it is unusable.
//
// A failed open is not fatal to the process: the failure is kept and every
// DB call returns it wrapped in common.ErrStore until Reinit succeeds.
type Store struct {
	mu  sync.RWMutex
	dsn string
	db  *sql.DB
	err error
}

// Open connects to dsn. It never returns nil; check Err for the outcome.
func Open(ctx context.Context, dsn string) *Store {
	s := &Store{dsn: dsn}
	s.db, s.err = InitDatabase(ctx, dsn)
	return s
}

// NewStore wraps an already-migrated connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DSN returns the data source the store was opened with.
func (s *Store) DSN() string {
	return s.dsn
}

// Err reports the initialization failure, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// DB returns the live connection or an error wrapping common.ErrStore.
func (s *Store) DB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStore, s.err)
	}
	if s.db == nil {
		return nil, fmt.Errorf("%w: store is closed", common.ErrStore)
	}
	return s.db, nil
}

// Reinit reopens the connection. A healthy store is left untouched.
func (s *Store) Reinit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err == nil && s.db != nil {
		return nil
	}
	if s.dsn == "" {
		return fmt.Errorf("%w: no data source to reopen", common.ErrStore)
	}
	db, err := InitDatabase(ctx, s.dsn)
	if err != nil {
		s.err = err
		return fmt.Errorf("%w: %v", common.ErrStore, err)
	}
	s.db, s.err = db, nil
	return nil
}

// Close releases the connection. Later DB calls fail with common.ErrStore.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
