// Package session хранит состояние входа клиента: unauthenticated → loading → authenticated.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/wealthvault/internal/client/api"
	"github.com/iudanet/wealthvault/internal/client/auth"
	"github.com/iudanet/wealthvault/internal/client/storage"
)

// State состояние сессии
type State int

// Session states
const (
	StateUnauthenticated State = iota
	StateLoading
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

var (
	// ErrNotLoggedIn no saved session on this device
	ErrNotLoggedIn = errors.New("not logged in, run 'wealthvault login' first")
	// ErrNotAuthenticated operation requires an unlocked session
	ErrNotAuthenticated = errors.New("session is not authenticated")
	// ErrBusy another login or unlock is in progress
	ErrBusy = errors.New("session is loading")
	// ErrSessionExpired refresh token was rejected by the server
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// refreshMargin access token обновляется заранее
const refreshMargin = 30 * time.Second

// Session состояние входа. Безопасна для конкурентного использования.
type Session struct {
	logger  *slog.Logger
	service *auth.Service
	tokens  *auth.TokenStore
	auth    *storage.AuthData
	now     func() time.Time
	key     []byte
	state   State
	mu      sync.Mutex
}

// New creates an unauthenticated session
func New(logger *slog.Logger, service *auth.Service, tokens *auth.TokenStore) *Session {
	return &Session{
		logger:  logger,
		service: service,
		tokens:  tokens,
		now:     time.Now,
	}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Username returns the authenticated user name or empty string
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auth == nil {
		return ""
	}
	return s.auth.Username
}

// EncryptionKey returns the key protecting local data; nil until authenticated
func (s *Session) EncryptionKey() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Register creates the account and logs in
func (s *Session) Register(ctx context.Context, username, password string) error {
	if err := s.begin(); err != nil {
		return err
	}
	if err := s.service.Register(ctx, username, password); err != nil {
		s.fail()
		return err
	}
	return s.login(ctx, username, password)
}

// Login authenticates on the server and saves the encrypted session
func (s *Session) Login(ctx context.Context, username, password string) error {
	if err := s.begin(); err != nil {
		return err
	}
	return s.login(ctx, username, password)
}

func (s *Session) login(ctx context.Context, username, password string) error {
	res, err := s.service.Login(ctx, username, password)
	if err != nil {
		s.fail()
		return err
	}
	if err := s.tokens.Save(ctx, res.Auth, res.EncryptionKey); err != nil {
		s.fail()
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.succeed(res.Auth, res.EncryptionKey)
	s.logger.InfoContext(ctx, "logged in", slog.String("username", username))
	return nil
}

// Unlock restores the saved session with the master password
func (s *Session) Unlock(ctx context.Context, password string) error {
	if err := s.begin(); err != nil {
		return err
	}

	stored, err := s.tokens.Peek(ctx)
	if err != nil {
		s.fail()
		if errors.Is(err, storage.ErrAuthNotFound) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("failed to read session: %w", err)
	}

	key, err := auth.DeriveEncryptionKey(password, stored.Username, stored.PublicSalt)
	if err != nil {
		s.fail()
		return err
	}

	data, err := s.tokens.Load(ctx, key)
	if err != nil {
		s.fail()
		return err
	}

	s.succeed(data, key)
	return nil
}

// SavedUsername returns the user of the session saved on this device
func (s *Session) SavedUsername(ctx context.Context) (string, error) {
	stored, err := s.tokens.Peek(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return "", ErrNotLoggedIn
		}
		return "", err
	}
	return stored.Username, nil
}

// AccessToken returns a valid access token, refreshing it when it is about to expire
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAuthenticated {
		return "", ErrNotAuthenticated
	}

	if s.now().Add(refreshMargin).Unix() < s.auth.ExpiresAt {
		return s.auth.AccessToken, nil
	}

	refreshed, err := s.service.Refresh(ctx, s.auth)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			// Refresh token отозван или истек: сессия больше не действительна
			s.clearLocked()
			_ = s.tokens.Delete(ctx)
			return "", ErrSessionExpired
		}
		return "", err
	}

	if err := s.tokens.Save(ctx, refreshed, s.key); err != nil {
		s.logger.WarnContext(ctx, "failed to persist refreshed tokens", slog.Any("error", err))
	}
	s.auth = refreshed
	return refreshed.AccessToken, nil
}

// Logout notifies the server (best effort) and removes the local session
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	current := s.auth
	s.clearLocked()
	s.mu.Unlock()

	if current != nil {
		if err := s.service.Logout(ctx, current.AccessToken); err != nil {
			// Не прерываем процесс, если сервер недоступен
			s.logger.WarnContext(ctx, "failed to logout on server", slog.Any("error", err))
		}
	}

	if err := s.tokens.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete local session: %w", err)
	}
	return nil
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoading {
		return ErrBusy
	}
	s.state = StateLoading
	return nil
}

func (s *Session) succeed(data *storage.AuthData, key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = data
	s.key = key
	s.state = StateAuthenticated
}

func (s *Session) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.auth = nil
	s.key = nil
	s.state = StateUnauthenticated
}
