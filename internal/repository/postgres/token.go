package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (r *tokenRepository) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, uuid.New(), userID, token, expiresAt, time.Now()); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepository) ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := r.db.GetContext(ctx, &userID,
		`SELECT user_id FROM refresh_tokens WHERE token = $1 AND expires_at > $2`,
		token, time.Now())
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid or expired refresh token: %w", err)
	}
	return userID, nil
}

func (r *tokenRepository) InvalidateToken(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

func (r *tokenRepository) InvalidateUserTokens(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to invalidate user tokens: %w", err)
	}
	return nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected()
}
