package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/jwt"
	"github.com/iudanet/wealthvault/internal/server/metrics"
	"github.com/iudanet/wealthvault/internal/validation"
)

const (
	testPublicURL      = "https://vault.example.com/"
	testGuardianSecret = "guardian-secret-for-tests-0123456789"
)

func setupGuardian(t *testing.T, env *testEnv) *GuardianService {
	t.Helper()
	// Токены проверяются по реальным часам, поэтому статусы тоже считаем по ним
	env.policies.now = time.Now
	return NewGuardianService(
		setupTestLogger(),
		env.store,
		env.policies,
		jwt.NewShareSigner(testGuardianSecret),
		env.metrics,
		testPublicURL,
		24*time.Hour,
	)
}

func TestGuardianService_CreateAndResolve(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	guardian := setupGuardian(t, env)
	owner := createOwner(t, env)

	_, err := env.policies.List(ctx, owner, "")
	require.NoError(t, err)

	link, err := guardian.CreateShare(ctx, owner, models.DefaultShareOptions())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.URL, "https://vault.example.com/?guardian=1&token="))
	assert.True(t, strings.HasSuffix(link.URL, link.Token))

	view, err := guardian.Resolve(ctx, link.Token)
	require.NoError(t, err)
	assert.Len(t, view.Records, 3)
	assert.Equal(t, 3, view.Summary.Total)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.GuardianResolves.WithLabelValues(metrics.ResultOK)))
}

func TestGuardianService_ResolveDoesNotSeed(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	guardian := setupGuardian(t, env)
	owner := createOwner(t, env)

	link, err := guardian.CreateShare(ctx, owner, models.DefaultShareOptions())
	require.NoError(t, err)

	view, err := guardian.Resolve(ctx, link.Token)
	require.NoError(t, err)
	assert.Empty(t, view.Records)

	count, err := env.store.CountPolicies(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGuardianService_Subset(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	guardian := setupGuardian(t, env)
	owner := createOwner(t, env)
	other := createOwner(t, env)

	list, err := env.policies.List(ctx, owner, "")
	require.NoError(t, err)
	otherList, err := env.policies.List(ctx, other, "")
	require.NoError(t, err)

	opts := models.DefaultShareOptions()
	opts.IncludeAll = false

	tests := []struct {
		name string
		ids  []string
	}{
		{name: "empty subset", ids: nil},
		{name: "foreign record", ids: []string{list.Records[0].ID, otherList.Records[0].ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts.RecordIDs = tt.ids
			_, err := guardian.CreateShare(ctx, owner, opts)

			var fe validation.FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.Contains(t, fe, "record_ids")
		})
	}

	opts.RecordIDs = []string{list.Records[1].ID, list.Records[1].ID}
	link, err := guardian.CreateShare(ctx, owner, opts)
	require.NoError(t, err)
	assert.Len(t, link.Share.Options.RecordIDs, 1)

	view, err := guardian.Resolve(ctx, link.Token)
	require.NoError(t, err)
	require.Len(t, view.Records, 1)
	assert.Equal(t, list.Records[1].ID, view.Records[0].ID)
}

func TestGuardianService_RevokedShareDenied(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	guardian := setupGuardian(t, env)
	owner := createOwner(t, env)

	link, err := guardian.CreateShare(ctx, owner, models.DefaultShareOptions())
	require.NoError(t, err)

	require.NoError(t, guardian.RevokeShare(ctx, owner, link.Share.ID))

	_, err = guardian.Resolve(ctx, link.Token)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.GuardianResolves.WithLabelValues(metrics.ResultDenied)))
}

func TestGuardianService_InvalidTokensDenied(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	guardian := setupGuardian(t, env)
	owner := createOwner(t, env)
	other := createOwner(t, env)

	link, err := guardian.CreateShare(ctx, owner, models.DefaultShareOptions())
	require.NoError(t, err)

	now := time.Now()
	foreignSigner := jwt.NewShareSigner("another-guardian-secret-0123456789")
	forged, err := foreignSigner.Sign(link.Share.ID, owner, now, now.Add(time.Hour))
	require.NoError(t, err)

	mismatch, err := jwt.NewShareSigner(testGuardianSecret).Sign(link.Share.ID, other, now, now.Add(time.Hour))
	require.NoError(t, err)

	unknown, err := jwt.NewShareSigner(testGuardianSecret).Sign("no-such-share", owner, now, now.Add(time.Hour))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-token",
		"empty":          "",
		"tampered":       link.Token + "x",
		"foreign secret": forged,
		"owner mismatch": mismatch,
		"unknown share":  unknown,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := guardian.Resolve(ctx, token)
			assert.ErrorIs(t, err, ErrAccessDenied)
		})
	}
}

func TestGuardianService_ExpiredShareDenied(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	guardian := setupGuardian(t, env)
	owner := createOwner(t, env)

	guardian.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	link, err := guardian.CreateShare(ctx, owner, models.DefaultShareOptions())
	require.NoError(t, err)
	guardian.now = time.Now

	_, err = guardian.Resolve(ctx, link.Token)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGuardianService_ListShares(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	guardian := setupGuardian(t, env)
	owner := createOwner(t, env)

	link, err := guardian.CreateShare(ctx, owner, models.DefaultShareOptions())
	require.NoError(t, err)

	links, err := guardian.ListShares(ctx, owner)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, link.Share.ID, links[0].Share.ID)
	assert.Equal(t, link.Token, links[0].Token)
}
