package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/storage"
)

func newUser(username string) *models.User {
	return &models.User{
		ID:          uuid.New().String(),
		Username:    username,
		AuthKeyHash: "$2a$10$hash",
		PublicSalt:  "c2FsdA==",
		CreatedAt:   time.Now(),
	}
}

func TestUserStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := newUser("asha")
	require.NoError(t, s.CreateUser(ctx, user))

	byName, err := s.GetUserByUsername(ctx, "asha")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, user.AuthKeyHash, byName.AuthKeyHash)
	assert.Equal(t, user.PublicSalt, byName.PublicSalt)
	assert.WithinDuration(t, user.CreatedAt, byName.CreatedAt, time.Microsecond)
	assert.Nil(t, byName.LastLogin)

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha", byID.Username)
}

func TestUserStorage_CreateUser_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.CreateUser(ctx, newUser("duplicate")))
	err := s.CreateUser(ctx, newUser("duplicate"))
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestUserStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetUserByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	assert.ErrorIs(t, s.UpdateLastLogin(ctx, "missing", time.Now()), storage.ErrUserNotFound)
}

func TestUserStorage_UpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := newUser("ravi")
	require.NoError(t, s.CreateUser(ctx, user))

	login := time.Now()
	require.NoError(t, s.UpdateLastLogin(ctx, user.ID, login))

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.WithinDuration(t, login, *got.LastLogin, time.Microsecond)
}
