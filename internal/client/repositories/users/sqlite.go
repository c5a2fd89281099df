package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/client/models"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (username, password_digest, first_name, last_name, email)
			VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		u.Username, u.PasswordDigest, u.FirstName, u.LastName, u.Email)
	if err != nil {
		if dbx.IsConstraintViolation(err) {
			return common.ErrDuplicateUser
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT username, password_digest, first_name, last_name, email
			FROM users WHERE username = ?`

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&u.Username, &u.PasswordDigest, &u.FirstName, &u.LastName, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return n > 0, nil
}
