package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/policy"
	"github.com/iudanet/wealthvault/internal/server/storage"
)

func newPolicy(ownerID string, createdAt time.Time) *models.PolicyRecord {
	return &models.PolicyRecord{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Kind:             models.KindLIC,
		Name:             "Jeevan Anand",
		PolicyNumber:     "LIC123456789",
		PremiumAmount:    decimal.RequireFromString("25000.50"),
		PaymentFrequency: models.FrequencyYearly,
		NextDueDate:      models.NewDate(2027, time.March, 15),
		MaturityDate:     "2040-08-10",
		NomineeName:      "Mother",
		CoverageAmount:   decimal.NewFromInt(500000),
		DocumentRefs:     []string{"a.pdf", "b.png"},
		Status:           models.StatusActive,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

func TestPolicyStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	owner := createTestUser(t, ctx, s)
	record := newPolicy(owner, time.Now())
	record.PasswordProtected = true
	require.NoError(t, s.CreatePolicy(ctx, record))

	got, err := s.GetPolicy(ctx, owner, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Name, got.Name)
	assert.True(t, record.PremiumAmount.Equal(got.PremiumAmount))
	assert.Equal(t, record.NextDueDate, got.NextDueDate)
	assert.Equal(t, record.DocumentRefs, got.DocumentRefs)
	assert.True(t, got.PasswordProtected)
	assert.True(t, record.CreatedAt.Equal(got.CreatedAt))
}

func TestPolicyStorage_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	owner := createTestUser(t, ctx, s)
	other := createTestUser(t, ctx, s)
	record := newPolicy(owner, time.Now())
	require.NoError(t, s.CreatePolicy(ctx, record))

	_, err := s.GetPolicy(ctx, other, record.ID)
	assert.ErrorIs(t, err, storage.ErrPolicyNotFound)

	list, err := s.ListPolicies(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	hijack := record.Clone()
	hijack.OwnerID = other
	assert.ErrorIs(t, s.UpdatePolicy(ctx, hijack), storage.ErrPolicyNotFound)
	assert.ErrorIs(t, s.UpdatePolicyStatus(ctx, other, record.ID, models.StatusExpired), storage.ErrPolicyNotFound)
}

func TestPolicyStorage_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	owner := createTestUser(t, ctx, s)
	now := time.Now()
	older := newPolicy(owner, now.Add(-time.Hour))
	newer := newPolicy(owner, now)
	require.NoError(t, s.CreatePolicies(ctx, []*models.PolicyRecord{older, newer}))

	list, err := s.ListPolicies(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	n, err := s.CountPolicies(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPolicyStorage_UpdatePolicy(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	owner := createTestUser(t, ctx, s)
	record := newPolicy(owner, time.Now().Add(-time.Hour))
	require.NoError(t, s.CreatePolicy(ctx, record))

	edited := record.Clone()
	edited.NomineeName = "Spouse"
	edited.DocumentRefs = []string{}
	edited.UpdatedAt = time.Now()
	edited.CreatedAt = time.Now().Add(time.Hour) // не должно сохраниться
	require.NoError(t, s.UpdatePolicy(ctx, edited))

	got, err := s.GetPolicy(ctx, owner, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spouse", got.NomineeName)
	assert.Empty(t, got.DocumentRefs)
	assert.NotNil(t, got.DocumentRefs)
	assert.True(t, record.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, edited.UpdatedAt.Equal(got.UpdatedAt))
}

func TestPolicyStorage_UpdatePolicyStatus(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	owner := createTestUser(t, ctx, s)
	record := newPolicy(owner, time.Now())
	require.NoError(t, s.CreatePolicy(ctx, record))

	require.NoError(t, s.UpdatePolicyStatus(ctx, owner, record.ID, models.StatusExpired))

	got, err := s.GetPolicy(ctx, owner, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, got.Status)
	assert.Equal(t, record.Name, got.Name)
}

func TestPolicyStorage_NullColumnsDeserialize(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	owner := createTestUser(t, ctx, s)
	id := uuid.New().String()
	now := storage.FormatTime(time.Now())
	_, err := s.DB().ExecContext(ctx,
		`INSERT INTO policies (id, owner_id, name, document_refs, password_protected, created_at, updated_at)
		 VALUES (?, ?, 'Legacy', 'not json', 'yes', ?, ?)`,
		id, owner, now, now,
	)
	require.NoError(t, err)

	got, err := s.GetPolicy(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, "Legacy", got.Name)
	assert.Equal(t, []string{}, got.DocumentRefs)
	assert.False(t, got.PasswordProtected)
	assert.True(t, got.PremiumAmount.IsZero())
	assert.True(t, got.NextDueDate.IsZero())
}

func TestPolicyStorage_SeedDemoRecords(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	owner := createTestUser(t, ctx, s)
	require.NoError(t, s.CreatePolicies(ctx, policy.DemoRecords(owner, time.Now())))

	list, err := s.ListPolicies(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, policy.DemoRecordCount)

	ids := map[string]struct{}{}
	for _, r := range list {
		ids[r.ID] = struct{}{}
	}
	assert.Len(t, ids, policy.DemoRecordCount)
	// Последняя созданная демо-запись идет первой
	assert.Equal(t, "HDFC Click2Protect", list[0].Name)
}
