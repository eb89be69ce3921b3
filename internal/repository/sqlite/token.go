package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/calonsog/taskapi/internal/domain"
)

// TokenRepository implements domain.TokenRepository using SQLite. Each row
// is one active session token; a user logged in from several clients holds
// several rows.
type TokenRepository struct {
	db *sqlx.DB
}

func (r *TokenRepository) Add(ctx context.Context, userID int64, token string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tokens (user_id, token, created_at) VALUES (?, ?, ?)",
		userID, token, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Exists(ctx context.Context, userID int64, token string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tokens WHERE user_id = ? AND token = ?",
		userID, token,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count tokens: %w", err)
	}
	return count > 0, nil
}

func (r *TokenRepository) Remove(ctx context.Context, userID int64, token string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM tokens WHERE user_id = ? AND token = ?",
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (r *TokenRepository) RemoveAll(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM tokens WHERE user_id = ?", userID,
	)
	if err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}

var _ domain.TokenRepository = (*TokenRepository)(nil)
