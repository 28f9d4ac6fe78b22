// Package auth выполняет вход на сервер и хранит токены сессии в зашифрованном виде.
// Master password никогда не покидает клиент: сервер получает хеш производного auth_key.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/wealthvault/internal/client/storage"
	"github.com/iudanet/wealthvault/internal/crypto"
	"github.com/iudanet/wealthvault/internal/validation"
	pkgapi "github.com/iudanet/wealthvault/pkg/api"
)

// Server auth endpoints of the API
type Server interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error)
	GetSalt(ctx context.Context, username string) (*pkgapi.SaltResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// Service предоставляет функции авторизации
type Service struct {
	server Server
	now    func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(server Server) *Service {
	return &Service{
		server: server,
		now:    time.Now,
	}
}

// LoginResult содержит результат авторизации
type LoginResult struct {
	Auth          *storage.AuthData // токены в открытом виде
	EncryptionKey []byte            // ключ шифрования (НЕ сохраняется!)
}

// Register регистрирует нового пользователя
func (s *Service) Register(ctx context.Context, username, masterPassword string) error {
	// Валидация входных данных
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(masterPassword); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	// 1. Генерируем публичную соль
	publicSalt, err := crypto.GenerateSaltBase64()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	// 2. Деривируем ключи и хешируем auth_key для отправки на сервер
	authKeyHash, _, err := deriveAuth(masterPassword, username, publicSalt)
	if err != nil {
		return err
	}

	// 3. Отправляем запрос на регистрацию
	_, err = s.server.Register(ctx, pkgapi.RegisterRequest{
		Username:    username,
		AuthKeyHash: authKeyHash,
		PublicSalt:  publicSalt,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	return nil
}

// Login выполняет аутентификацию пользователя
// Возвращает токены и ключ шифрования локальных данных
func (s *Service) Login(ctx context.Context, username, masterPassword string) (*LoginResult, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(masterPassword); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	// 1. Получаем public_salt с сервера
	saltResp, err := s.server.GetSalt(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get salt: %w", err)
	}

	// 2. Деривируем ключи из master password
	authKeyHash, encryptionKey, err := deriveAuth(masterPassword, username, saltResp.PublicSalt)
	if err != nil {
		return nil, err
	}

	// 3. Отправляем запрос на логин
	resp, err := s.server.Login(ctx, pkgapi.LoginRequest{
		Username:    username,
		AuthKeyHash: authKeyHash,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return &LoginResult{
		Auth: &storage.AuthData{
			Username:     username,
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			PublicSalt:   saltResp.PublicSalt,
			ExpiresAt:    s.now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix(),
		},
		EncryptionKey: encryptionKey,
	}, nil
}

// Refresh обменивает refresh token; возвращает копию auth с новыми токенами
func (s *Service) Refresh(ctx context.Context, auth *storage.AuthData) (*storage.AuthData, error) {
	resp, err := s.server.Refresh(ctx, auth.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	refreshed := *auth
	refreshed.AccessToken = resp.AccessToken
	refreshed.RefreshToken = resp.RefreshToken
	refreshed.ExpiresAt = s.now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix()
	return &refreshed, nil
}

// Logout уведомляет сервер о выходе
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	return s.server.Logout(ctx, accessToken)
}

// DeriveEncryptionKey восстанавливает ключ шифрования по сохраненным username и соли
func DeriveEncryptionKey(masterPassword, username, publicSalt string) ([]byte, error) {
	_, key, err := deriveAuth(masterPassword, username, publicSalt)
	return key, err
}

func deriveAuth(masterPassword, username, publicSalt string) (string, []byte, error) {
	keys, err := crypto.DeriveKeysFromBase64Salt(masterPassword, username, publicSalt)
	if err != nil {
		return "", nil, fmt.Errorf("failed to derive keys: %w", err)
	}

	authKeyHash, err := crypto.HashAuthKey(keys.AuthKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash auth key: %w", err)
	}

	return authKeyHash, keys.EncryptionKey, nil
}
