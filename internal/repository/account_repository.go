package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xeviet/bus-ticketing/internal/model"
)

// ErrAccountNotFound is returned when a staff account lookup yields no rows.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepo provides access to staff/admin accounts.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

// GetByUsername fetches a staff account for login.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	const q = `SELECT id, username, password_hash, role FROM accounts WHERE username = ?`
	var a model.Account
	err := r.db.QueryRowContext(ctx, q, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByID fetches a staff account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	const q = `SELECT id, username, password_hash, role FROM accounts WHERE id = ?`
	var a model.Account
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}
