package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/client/models"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
)

const columns = `id, owner_username, name, url, username, password_ciphertext`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(s scanner) (models.Credential, error) {
	var c models.Credential
	err := s.Scan(&c.ID, &c.OwnerUsername, &c.Name, &c.URL, &c.Username, &c.PasswordCiphertext)
	return c, err
}

func (r *SQLiteRepository) Create(ctx context.Context, c *models.Credential) (int64, error) {
	query := `INSERT INTO credentials (owner_username, name, url, username, password_ciphertext)
			VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		c.OwnerUsername, c.Name, c.URL, c.Username, c.PasswordCiphertext)
	if err != nil {
		return 0, fmt.Errorf("failed to insert credential: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner string) ([]models.Credential, error) {
	query := `SELECT ` + columns + ` FROM credentials WHERE owner_username = ?`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select credentials: %w", err)
	}
	defer rows.Close()

	result := make([]models.Credential, 0)
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credentials: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64, owner string) (*models.Credential, error) {
	query := `SELECT ` + columns + ` FROM credentials WHERE id = ? AND owner_username = ?`
	c, err := scanCredential(r.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select credential: %w", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, owner, username, ciphertext string) (*models.Credential, error) {
	query := `UPDATE credentials SET username = ?, password_ciphertext = ?
			WHERE id = ? AND owner_username = ?
			RETURNING ` + columns
	c, err := scanCredential(r.db.QueryRowContext(ctx, query, username, ciphertext, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update credential: %w", err)
	}
	return &c, nil
}

// Delete removes a row. It expects exactly one row to be affected.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64, owner string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = ? AND owner_username = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}
