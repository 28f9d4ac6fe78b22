package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wealthvault/internal/server/handlers"
	"github.com/iudanet/wealthvault/internal/server/jwt"
)

func TestAuthMiddleware_Success(t *testing.T) {
	tokens := jwt.NewService("test-secret-key", 15*time.Minute, time.Hour)
	token, _, err := tokens.GenerateAccessToken("user123", "testuser")
	require.NoError(t, err)

	handler := AuthMiddleware(setupTestLogger(), tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := handlers.GetUserID(r.Context())
		require.True(t, ok)
		assert.Equal(t, "user123", userID)

		username, ok := handlers.GetUsername(r.Context())
		require.True(t, ok)
		assert.Equal(t, "testuser", username)

		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tokens := jwt.NewService("test-secret-key", 15*time.Minute, time.Hour)
	foreign := jwt.NewService("another-secret", 15*time.Minute, time.Hour)
	foreignToken, _, err := foreign.GenerateAccessToken("user123", "testuser")
	require.NoError(t, err)

	expired := jwt.NewService("test-secret-key", -time.Minute, time.Hour)
	expiredToken, _, err := expired.GenerateAccessToken("user123", "testuser")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{name: "missing header", header: "", message: "missing token"},
		{name: "no bearer prefix", header: "Token abc", message: "invalid token format"},
		{name: "empty token", header: "Bearer ", message: "invalid token format"},
		{name: "garbage", header: "Bearer not-a-jwt", message: "invalid or expired token"},
		{name: "foreign secret", header: "Bearer " + foreignToken, message: "invalid or expired token"},
		{name: "expired", header: "Bearer " + expiredToken, message: "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := AuthMiddleware(setupTestLogger(), tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/policies", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			resp := decodeError(t, rr.Body)
			assert.Equal(t, "Unauthorized", resp.Error)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestAuthMiddleware_GuardianTokenIsNotAccessToken(t *testing.T) {
	// Guardian токен подписан тем же секретом, но имеет другую аудиторию
	tokens := jwt.NewService("shared-secret", 15*time.Minute, time.Hour)
	signer := jwt.NewShareSigner("shared-secret")
	now := time.Now()
	shareToken, err := signer.Sign("share-1", "user123", now, now.Add(time.Hour))
	require.NoError(t, err)

	handler := AuthMiddleware(setupTestLogger(), tokens)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies", nil)
	req.Header.Set("Authorization", "Bearer "+shareToken)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
