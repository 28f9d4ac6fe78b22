package storage

import (
	"context"
	"time"

	"github.com/iudanet/wealthvault/internal/models"
)

// UserStorage хранит учетные записи владельцев
type UserStorage interface {
	// CreateUser returns ErrUserAlreadyExists when the username is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername returns ErrUserNotFound for unknown usernames
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID returns ErrUserNotFound for unknown ids
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateLastLogin stamps a successful login
	UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error
}

// TokenStorage хранит refresh токены. Токен одноразовый: при refresh он удаляется
// и заменяется новым.
type TokenStorage interface {
	// SaveRefreshToken inserts the token, replacing a row with the same value
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken returns ErrTokenNotFound for unknown or revoked tokens
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteRefreshToken returns ErrTokenNotFound when nothing was deleted
	DeleteRefreshToken(ctx context.Context, token string) error

	// DeleteUserTokens revokes every session of the owner and returns the count
	DeleteUserTokens(ctx context.Context, userID string) (int, error)

	// DeleteExpiredTokens is called periodically by the server
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
