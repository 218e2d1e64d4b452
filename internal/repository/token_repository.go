package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh-token hashes for both customers and staff.
// Kind distinguishes the two id spaces ("customer" or "staff").
type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh inserts a refresh-token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, kind string, subjectID uint64, tokenHash string, exp time.Time) error {
	const q = `INSERT INTO refresh_tokens (account_kind, account_id, token_hash, expires_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, kind, subjectID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the subject of a live, non-revoked token hash.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (kind string, subjectID uint64, err error) {
	const q = `SELECT account_kind, account_id, expires_at, revoked_at
		FROM refresh_tokens WHERE token_hash = ? LIMIT 1`
	var (
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	if err = r.db.QueryRowContext(ctx, q, tokenHash).Scan(&kind, &subjectID, &expiresAt, &revokedAt); err != nil {
		return "", 0, err
	}
	if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
		return "", 0, sql.ErrNoRows
	}
	return kind, subjectID, nil
}

// RevokeByHash marks one token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	const q = `UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, tokenHash)
	return err
}
