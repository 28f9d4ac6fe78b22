package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/blob"
	"github.com/iudanet/wealthvault/internal/server/jwt"
	"github.com/iudanet/wealthvault/internal/server/metrics"
	"github.com/iudanet/wealthvault/internal/server/service"
	"github.com/iudanet/wealthvault/internal/server/storage/sqlite"
)

const (
	testJWTSecret      = "handlers-test-secret-0123456789abcdef"
	testGuardianSecret = "handlers-guardian-secret-0123456789ab"
	testPublicURL      = "https://vault.example.com"
	testUserHeader     = "X-Test-User"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testAPI struct {
	router http.Handler
	store  *sqlite.Storage
}

// setupTestAPI собирает handlers поверх настоящих сервисов и in-memory sqlite.
// Пользователь запроса берется из заголовка X-Test-User.
func setupTestAPI(t *testing.T, extractor service.Extractor) *testAPI {
	t.Helper()
	logger := setupTestLogger()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	blobs, err := blob.New(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	m := metrics.New(prometheus.NewRegistry())
	types := service.NewTypeService(logger, store)
	policies := service.NewPolicyService(logger, store, types, m)
	guardian := service.NewGuardianService(logger, store, policies, jwt.NewShareSigner(testGuardianSecret), m, testPublicURL, 24*time.Hour)
	documents := service.NewDocumentService(logger, blobs, extractor, m, testPublicURL)

	policyHandler := NewPolicyHandler(logger, policies)
	typeHandler := NewTypeHandler(logger, types)
	shareHandler := NewShareHandler(logger, guardian)
	documentHandler := NewDocumentHandler(logger, documents)

	r := chi.NewRouter()
	r.Get("/api/v1/guardian", shareHandler.Resolve)
	r.Get("/api/v1/documents/{key}", documentHandler.Download)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if id := req.Header.Get(testUserHeader); id != "" {
					req = req.WithContext(WithUser(req.Context(), id, "user"))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Get("/api/v1/policies", policyHandler.List)
		r.Post("/api/v1/policies", policyHandler.Create)
		r.Get("/api/v1/policies/timeline", policyHandler.Timeline)
		r.Get("/api/v1/policies/{id}", policyHandler.Get)
		r.Put("/api/v1/policies/{id}", policyHandler.Update)
		r.Post("/api/v1/policies/{id}/renew", policyHandler.Renew)
		r.Get("/api/v1/types", typeHandler.List)
		r.Post("/api/v1/types", typeHandler.Create)
		r.Patch("/api/v1/types/{key}", typeHandler.Update)
		r.Delete("/api/v1/types/{key}", typeHandler.Delete)
		r.Get("/api/v1/shares", shareHandler.List)
		r.Post("/api/v1/shares", shareHandler.Create)
		r.Delete("/api/v1/shares/{id}", shareHandler.Revoke)
		r.Post("/api/v1/documents", documentHandler.Upload)
		r.Delete("/api/v1/documents/{key}", documentHandler.Delete)
		r.Post("/api/v1/extractions", documentHandler.Extract)
	})

	return &testAPI{router: r, store: store}
}

func (a *testAPI) createUser(t *testing.T) string {
	t.Helper()
	id := uuid.New().String()
	require.NoError(t, a.store.CreateUser(context.Background(), &models.User{
		ID:          id,
		Username:    "user_" + id[:8],
		AuthKeyHash: "hash",
		PublicSalt:  "salt",
		CreatedAt:   time.Now(),
	}))
	return id
}

func (a *testAPI) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(testUserHeader, userID)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}
