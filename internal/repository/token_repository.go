package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// TokenRepo stores refresh tokens by hash.  Revocation is a timestamp so
// that the purge job can drop old rows in one statement.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh records a newly issued refresh token.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp.UTC())
	if err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepo) find(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var (
		t         = model.RefreshToken{TokenHash: tokenHash}
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.UserID, &t.ExpiresAt, &revokedAt)
	if err != nil {
		return t, err
	}
	if revokedAt.Valid {
		t.RevokedAt = &revokedAt.Time
	}
	return t, nil
}

// ValidateRefresh returns the owning user ID of a usable token.  Unknown,
// revoked and expired tokens all yield ErrTokenInvalid.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	t, err := r.find(ctx, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTokenInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("load refresh token: %w", err)
	}
	if !t.Usable(time.Now().UTC()) {
		return 0, ErrTokenInvalid
	}
	return t.UserID, nil
}

// RevokeByHash revokes a single session.  Only one caller can win the
// revocation of a token; everyone else, and any caller presenting an
// already revoked token, gets ErrTokenInvalid.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	n, err := r.revoke(ctx, "token_hash=?", tokenHash)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenInvalid
	}
	return nil
}

// RevokeAllForUser ends every session of a user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.revoke(ctx, "user_id=?", userID)
	return err
}

func (r *TokenRepo) revoke(ctx context.Context, where string, arg interface{}) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE "+where+" AND revoked_at IS NULL", arg)
	if err != nil {
		return 0, fmt.Errorf("revoke refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke refresh token: %w", err)
	}
	return n, nil
}

// PurgeExpired deletes tokens that expired or were revoked before cutoff
// and returns how many rows went away.
func (r *TokenRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)",
		cutoff, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", err)
	}
	return res.RowsAffected()
}
