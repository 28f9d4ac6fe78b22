package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/wealthvault/internal/client/storage"
	"github.com/iudanet/wealthvault/internal/crypto"
)

// ErrWrongPassword stored tokens cannot be decrypted with the given key
var ErrWrongPassword = errors.New("wrong master password")

// TokenStore provides encryption layer between session and storage.
// It encrypts tokens before saving and decrypts them when retrieving.
type TokenStore struct {
	storage storage.AuthStorage
}

// NewTokenStore creates a new TokenStore
func NewTokenStore(storage storage.AuthStorage) *TokenStore {
	return &TokenStore{storage: storage}
}

// Save шифрует токены ключом сессии и сохраняет auth данные
func (s *TokenStore) Save(ctx context.Context, auth *storage.AuthData, encryptionKey []byte) error {
	if auth == nil {
		return fmt.Errorf("auth data is nil")
	}

	accessToken, err := crypto.EncryptToBase64([]byte(auth.AccessToken), encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refreshToken, err := crypto.EncryptToBase64([]byte(auth.RefreshToken), encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	// копируем структуру, чтобы не менять входящую
	stored := *auth
	stored.AccessToken = accessToken
	stored.RefreshToken = refreshToken

	return s.storage.SaveAuth(ctx, &stored)
}

// Load загружает auth данные и расшифровывает токены
func (s *TokenStore) Load(ctx context.Context, encryptionKey []byte) (*storage.AuthData, error) {
	stored, err := s.storage.GetAuth(ctx)
	if err != nil {
		return nil, err
	}

	accessToken, err := crypto.DecryptFromBase64(stored.AccessToken, encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrongPassword, err)
	}
	refreshToken, err := crypto.DecryptFromBase64(stored.RefreshToken, encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrongPassword, err)
	}

	auth := *stored
	auth.AccessToken = string(accessToken)
	auth.RefreshToken = string(refreshToken)
	return &auth, nil
}

// Peek возвращает сохраненные данные без расшифровки (username и соль открыты)
func (s *TokenStore) Peek(ctx context.Context) (*storage.AuthData, error) {
	return s.storage.GetAuth(ctx)
}

// Delete удаляет сохраненную сессию; отсутствие сессии не ошибка
func (s *TokenStore) Delete(ctx context.Context) error {
	if err := s.storage.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return err
	}
	return nil
}
