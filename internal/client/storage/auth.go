// Package storage описывает локальное хранилище клиента: сессию, кэш записей и метаданные.
package storage

import (
	"context"
)

// AuthStorage хранит сессию устройства как есть; шифрованием токенов занимается auth.TokenStore.
type AuthStorage interface {
	SaveAuth(ctx context.Context, auth *AuthData) error
	// GetAuth returns ErrAuthNotFound when nobody is logged in on this device
	GetAuth(ctx context.Context) (*AuthData, error)
	DeleteAuth(ctx context.Context) error
}

// AuthData сохраненная сессия. Username и PublicSalt открыты: по ним
// заново выводится ключ при разблокировке. Токены на диске зашифрованы.
type AuthData struct {
	Username     string `json:"username"`
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	PublicSalt   string `json:"public_salt"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds, срок access token
}
