package data

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/wealthvault/internal/client/api"
	"github.com/iudanet/wealthvault/internal/client/storage/boltdb"
	"github.com/iudanet/wealthvault/pkg/api"
)

// mockAPI hand-written mock сервера: хранит записи в памяти
type mockAPI struct {
	policies   []api.Policy
	listCalls  int
	listErr    error
	createErr  error
	lastToken  string
	lastUpload string
}

func (m *mockAPI) ListPolicies(_ context.Context, token, _ string) (*api.PolicyListResponse, error) {
	m.listCalls++
	m.lastToken = token
	if m.listErr != nil {
		return nil, m.listErr
	}
	return &api.PolicyListResponse{
		Policies: append([]api.Policy(nil), m.policies...),
		Summary:  api.PolicySummary{Total: len(m.policies)},
	}, nil
}

func (m *mockAPI) Timeline(context.Context, string) ([]api.Policy, error) {
	return m.policies, nil
}

func (m *mockAPI) GetPolicy(_ context.Context, _, id string) (*api.Policy, error) {
	for _, p := range m.policies {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &clientapi.Error{StatusCode: http.StatusNotFound, Message: "policy not found"}
}

func (m *mockAPI) CreatePolicy(_ context.Context, _ string, req api.PolicyRequest) (*api.Policy, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	p := api.Policy{ID: "p-new", Name: req.Name, Kind: req.Kind, Status: "Active"}
	m.policies = append([]api.Policy{p}, m.policies...)
	return &p, nil
}

func (m *mockAPI) UpdatePolicy(_ context.Context, _, id string, req api.PolicyRequest) (*api.Policy, error) {
	for i := range m.policies {
		if m.policies[i].ID == id {
			m.policies[i].Name = req.Name
			return &m.policies[i], nil
		}
	}
	return nil, &clientapi.Error{StatusCode: http.StatusNotFound, Message: "policy not found"}
}

func (m *mockAPI) RenewPolicy(_ context.Context, _, id string) (*api.Policy, error) {
	for i := range m.policies {
		if m.policies[i].ID == id {
			m.policies[i].NextDueDate = "2025-02-01"
			return &m.policies[i], nil
		}
	}
	return nil, &clientapi.Error{StatusCode: http.StatusNotFound, Message: "policy not found"}
}

func (m *mockAPI) ListTypes(context.Context, string) ([]api.InvestmentType, error) {
	return []api.InvestmentType{{Key: "LIC", Name: "LIC", IsDefault: true, IsActive: true}}, nil
}

func (m *mockAPI) CreateType(_ context.Context, _ string, req api.CreateTypeRequest) (*api.InvestmentType, error) {
	return &api.InvestmentType{Key: "custom_gold", Name: req.Name, Category: "Custom", IsActive: true}, nil
}

func (m *mockAPI) SetTypeActive(_ context.Context, _, key string, active bool) (*api.InvestmentType, error) {
	return &api.InvestmentType{Key: key, IsActive: active}, nil
}

func (m *mockAPI) DeleteType(context.Context, string, string) error { return nil }

func (m *mockAPI) ListShares(context.Context, string) ([]api.Share, error) {
	return []api.Share{{ID: "s1", Active: true}}, nil
}

func (m *mockAPI) CreateShare(context.Context, string, api.CreateShareRequest) (*api.Share, error) {
	return &api.Share{ID: "s2", Active: true}, nil
}

func (m *mockAPI) RevokeShare(context.Context, string, string) error { return nil }

func (m *mockAPI) UploadDocument(_ context.Context, _, filename string, content io.Reader, protected bool) (*api.Document, error) {
	data, _ := io.ReadAll(content)
	m.lastUpload = string(data)
	return &api.Document{Ref: "ref_" + filename, PasswordProtected: protected}, nil
}

func (m *mockAPI) ExtractDocument(_ context.Context, _, filename string, _ io.Reader, _ bool) (*api.ExtractionResponse, error) {
	number := "LIC-1"
	return &api.ExtractionResponse{
		Document:  api.Document{Ref: "ref_" + filename},
		Extracted: api.ExtractedPolicy{PolicyNumber: &number},
	}, nil
}

type fakeSession struct {
	key      []byte
	tokenErr error
}

func (f *fakeSession) AccessToken(context.Context) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "token-1", nil
}

func (f *fakeSession) EncryptionKey() []byte { return f.key }

func setupService(t *testing.T) (*Service, *mockAPI, *fakeSession) {
	t.Helper()
	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	mock := &mockAPI{policies: []api.Policy{
		{ID: "p1", Name: "Jeevan Anand", Kind: "LIC", Status: "Active", PremiumAmount: decimal.NewFromInt(100)},
		{ID: "p2", Name: "Health Plus", Kind: "Mediclaim", Status: "Expired"},
	}}
	sess := &fakeSession{key: []byte(strings.Repeat("k", 32))}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(logger, mock, sess, store, store)
	svc.now = func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) }
	return svc, mock, sess
}

func TestService_ReloadCachesSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, mock, _ := setupService(t)

	_, err := svc.Cached(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	snap, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Policies, 2)
	assert.Equal(t, 2, snap.Summary.Total)
	assert.Equal(t, "token-1", mock.lastToken)

	cached, err := svc.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Policies[0].ID, cached.Policies[0].ID)
	assert.True(t, snap.Policies[0].PremiumAmount.Equal(cached.Policies[0].PremiumAmount))

	last, err := svc.LastReload(ctx)
	require.NoError(t, err)
	assert.True(t, last.Equal(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)))
}

func TestService_CachedRequiresSessionKey(t *testing.T) {
	ctx := context.Background()
	svc, _, sess := setupService(t)

	_, err := svc.Reload(ctx)
	require.NoError(t, err)

	sess.key = []byte(strings.Repeat("x", 32))
	_, err = svc.Cached(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
}

func TestService_ReloadWithoutSession(t *testing.T) {
	svc, mock, sess := setupService(t)
	sess.tokenErr = errors.New("session is not authenticated")

	_, err := svc.Reload(context.Background())
	assert.Error(t, err)
	assert.Zero(t, mock.listCalls)
}

func TestService_CreateAwaitsReload(t *testing.T) {
	ctx := context.Background()
	svc, mock, _ := setupService(t)

	created, err := svc.Create(ctx, api.PolicyRequest{Name: "Term Shield", Kind: "Term"})
	require.NoError(t, err)
	assert.Equal(t, "p-new", created.ID)
	assert.Equal(t, 1, mock.listCalls)

	cached, err := svc.Cached(ctx)
	require.NoError(t, err)
	require.Len(t, cached.Policies, 3)
	assert.Equal(t, "p-new", cached.Policies[0].ID)
}

func TestService_FailedCreateReloadsAuthoritativeState(t *testing.T) {
	ctx := context.Background()
	svc, mock, _ := setupService(t)
	mock.createErr = &clientapi.Error{
		StatusCode: http.StatusUnprocessableEntity,
		Fields:     map[string]string{"name": "name is required"},
	}

	_, err := svc.Create(ctx, api.PolicyRequest{})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"name": "name is required"}, clientapi.FieldErrors(err))
	assert.Equal(t, 1, mock.listCalls, "list is reloaded after a failed write")

	cached, err := svc.Cached(ctx)
	require.NoError(t, err)
	assert.Len(t, cached.Policies, 2)
}

func TestService_SavedButReloadFailed(t *testing.T) {
	svc, mock, _ := setupService(t)
	mock.listErr = errors.New("connection reset")

	updated, err := svc.Update(context.Background(), "p1", api.PolicyRequest{Name: "Renamed"})
	require.Error(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Contains(t, err.Error(), "record saved but list reload failed")
}

func TestService_RenewAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	renewed, err := svc.Renew(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", renewed.NextDueDate)

	_, err = svc.Renew(ctx, "missing")
	assert.ErrorIs(t, err, clientapi.ErrNotFound)

	got, err := svc.Get(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "Health Plus", got.Name)
}

func TestSnapshot_Filter(t *testing.T) {
	snap := &Snapshot{Policies: []api.Policy{
		{ID: "a", Status: "Active"},
		{ID: "b", Status: "Expired"},
		{ID: "c", Status: "Active"},
	}}

	assert.Len(t, snap.Filter(""), 3)
	active := snap.Filter("Active")
	require.Len(t, active, 2)
	assert.Equal(t, "c", active[1].ID)
	assert.Empty(t, snap.Filter("Attention"))
}

func TestService_Passthrough(t *testing.T) {
	ctx := context.Background()
	svc, mock, _ := setupService(t)

	types, err := svc.Types(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 1)

	added, err := svc.AddType(ctx, api.CreateTypeRequest{Name: "Gold"})
	require.NoError(t, err)
	assert.Equal(t, "Gold", added.Name)

	toggled, err := svc.SetTypeActive(ctx, "custom_gold", false)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
	require.NoError(t, svc.RemoveType(ctx, "custom_gold"))

	shares, err := svc.Shares(ctx)
	require.NoError(t, err)
	assert.Len(t, shares, 1)
	share, err := svc.CreateShare(ctx, api.CreateShareRequest{})
	require.NoError(t, err)
	assert.Equal(t, "s2", share.ID)
	require.NoError(t, svc.RevokeShare(ctx, "s2"))

	doc, err := svc.Upload(ctx, "policy.pdf", strings.NewReader("%PDF"), true)
	require.NoError(t, err)
	assert.True(t, doc.PasswordProtected)
	assert.Equal(t, "%PDF", mock.lastUpload)

	res, err := svc.Extract(ctx, "policy.pdf", strings.NewReader("%PDF"), false)
	require.NoError(t, err)
	require.NotNil(t, res.Extracted.PolicyNumber)
	assert.Equal(t, "LIC-1", *res.Extracted.PolicyNumber)
}

func TestService_Clear(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	require.NoError(t, svc.Clear(ctx), "clearing an empty cache is not an error")

	_, err := svc.Reload(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx))

	_, err = svc.Cached(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
