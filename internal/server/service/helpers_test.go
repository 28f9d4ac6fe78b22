package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/metrics"
	"github.com/iudanet/wealthvault/internal/server/storage/sqlite"
)

var testNow = time.Date(2026, time.October, 18, 15, 30, 0, 0, time.UTC)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testEnv struct {
	store    *sqlite.Storage
	metrics  *metrics.Metrics
	types    *TypeService
	policies *PolicyService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := setupTestLogger()
	m := metrics.New(prometheus.NewRegistry())
	types := NewTypeService(logger, store)
	policies := NewPolicyService(logger, store, types, m)
	policies.now = func() time.Time { return testNow }

	return &testEnv{store: store, metrics: m, types: types, policies: policies}
}

func createOwner(t *testing.T, env *testEnv) string {
	t.Helper()
	id := uuid.New().String()
	err := env.store.CreateUser(context.Background(), &models.User{
		ID:          id,
		Username:    "user_" + id[:8],
		AuthKeyHash: "hash",
		PublicSalt:  "salt",
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	return id
}

func fullInput() *models.PolicyRecord {
	return &models.PolicyRecord{
		Kind:             models.KindTerm,
		Name:             "HDFC Click2Protect",
		PolicyNumber:     "HDFC456789123",
		PremiumAmount:    decimal.NewFromInt(12000),
		PaymentFrequency: models.FrequencyYearly,
		NextDueDate:      models.NewDate(2027, time.July, 5),
		MaturityDate:     "2045-07-05",
		NomineeName:      "Father",
		CoverageAmount:   decimal.NewFromInt(1000000),
		DocumentRefs:     []string{"term_policy.pdf"},
	}
}
