package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/storage"
)

const tokenColumns = `token, user_id, expires_at, created_at`

// SaveRefreshToken inserts the token, replacing a row with the same value
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `INSERT OR REPLACE INTO refresh_tokens (` + tokenColumns + `) VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		token.Token,
		token.UserID,
		storage.FormatTime(token.ExpiresAt),
		storage.FormatTime(token.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken returns ErrTokenNotFound for unknown or revoked tokens
func (s *Storage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM refresh_tokens WHERE token = ?`, token)

	var (
		rt                   models.RefreshToken
		expiresAt, createdAt string
	)
	if err := row.Scan(&rt.Token, &rt.UserID, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	rt.ExpiresAt = storage.ParseTime(expiresAt)
	rt.CreatedAt = storage.ParseTime(createdAt)
	return &rt, nil
}

// DeleteRefreshToken удаляет использованный или отозванный токен
func (s *Storage) DeleteRefreshToken(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return expectAffected(result, storage.ErrTokenNotFound)
}

// DeleteUserTokens завершает все сессии владельца (logout)
func (s *Storage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	return s.deleteTokens(ctx, "user tokens", `DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
}

// DeleteExpiredTokens is called periodically by the server
func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	// Время хранится в формате фиксированной ширины, поэтому строковое сравнение корректно
	return s.deleteTokens(ctx, "expired tokens",
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, storage.FormatTime(time.Now()))
}

func (s *Storage) deleteTokens(ctx context.Context, what, query string, arg any) (int, error) {
	result, err := s.db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", what, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
