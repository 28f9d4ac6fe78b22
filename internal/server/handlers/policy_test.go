package handlers

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wealthvault/pkg/api"
)

func validPolicyRequest() api.PolicyRequest {
	return api.PolicyRequest{
		Kind:             "Term",
		Name:             "HDFC Click2Protect",
		PolicyNumber:     "HDFC456789123",
		PremiumAmount:    decimal.NewFromInt(12000),
		PaymentFrequency: "Yearly",
		NextDueDate:      "2099-07-05",
		MaturityDate:     "2099-12-31",
		NomineeName:      "Father",
		CoverageAmount:   decimal.NewFromInt(1000000),
		DocumentRefs:     []string{"term_policy.pdf"},
	}
}

func TestPolicyHandler_ListSeedsDemo(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	w := a.do(t, http.MethodGet, "/api/v1/policies", user, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[api.PolicyListResponse](t, w)
	assert.Len(t, resp.Policies, 3)
	assert.Equal(t, 3, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.Attention)

	w = a.do(t, http.MethodGet, "/api/v1/policies?status=attention", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	filtered := decodeBody[api.PolicyListResponse](t, w)
	assert.Len(t, filtered.Policies, 1)
	assert.Equal(t, 3, filtered.Summary.Total)
}

func TestPolicyHandler_RequiresUser(t *testing.T) {
	a := setupTestAPI(t, nil)

	w := a.do(t, http.MethodGet, "/api/v1/policies", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPolicyHandler_CreateGetUpdate(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	w := a.do(t, http.MethodPost, "/api/v1/policies", user, validPolicyRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[api.Policy](t, w)
	assert.Equal(t, "active", created.Status)
	assert.Equal(t, "2099-07-05", created.NextDueDate)

	w = a.do(t, http.MethodGet, "/api/v1/policies/"+created.ID, user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decodeBody[api.Policy](t, w).ID)

	edit := validPolicyRequest()
	edit.NomineeName = "Spouse"
	w = a.do(t, http.MethodPut, "/api/v1/policies/"+created.ID, user, edit)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Spouse", decodeBody[api.Policy](t, w).NomineeName)
}

func TestPolicyHandler_ValidationErrors(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	tests := []struct {
		name      string
		modify    func(r *api.PolicyRequest)
		wantField string
	}{
		{name: "missing nominee", modify: func(r *api.PolicyRequest) { r.NomineeName = "" }, wantField: "nominee_name"},
		{name: "bad date", modify: func(r *api.PolicyRequest) { r.NextDueDate = "05/07/2099" }, wantField: "next_due_date"},
		{name: "unknown kind", modify: func(r *api.PolicyRequest) { r.Kind = "Crypto" }, wantField: "kind"},
		{name: "bad frequency", modify: func(r *api.PolicyRequest) { r.PaymentFrequency = "Weekly" }, wantField: "payment_frequency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validPolicyRequest()
			tt.modify(&req)

			w := a.do(t, http.MethodPost, "/api/v1/policies", user, req)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)

			resp := decodeBody[api.ErrorResponse](t, w)
			assert.Contains(t, resp.Fields, tt.wantField)
		})
	}
}

func TestPolicyHandler_DraftCreate(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	w := a.do(t, http.MethodPost, "/api/v1/policies", user, api.PolicyRequest{
		Kind:             "LIC",
		Name:             "Scanned policy",
		PaymentFrequency: "Yearly",
		DocumentRefs:     []string{"scan.pdf"},
		Draft:            true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "attention", decodeBody[api.Policy](t, w).Status)
}

func TestPolicyHandler_OtherOwnerNotFound(t *testing.T) {
	a := setupTestAPI(t, nil)
	owner := a.createUser(t)
	other := a.createUser(t)

	w := a.do(t, http.MethodPost, "/api/v1/policies", owner, validPolicyRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[api.Policy](t, w)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/policies/" + created.ID},
		{http.MethodPut, "/api/v1/policies/" + created.ID},
		{http.MethodPost, "/api/v1/policies/" + created.ID + "/renew"},
	} {
		var body any
		if tc.method == http.MethodPut {
			body = validPolicyRequest()
		}
		w := a.do(t, tc.method, tc.path, other, body)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method+" "+tc.path)
	}
}

func TestPolicyHandler_RenewAndTimeline(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	w := a.do(t, http.MethodPost, "/api/v1/policies", user, validPolicyRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[api.Policy](t, w)

	w = a.do(t, http.MethodPost, "/api/v1/policies/"+created.ID+"/renew", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2100-07-05", decodeBody[api.Policy](t, w).NextDueDate)

	w = a.do(t, http.MethodGet, "/api/v1/policies/timeline", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	timeline := decodeBody[api.TimelineResponse](t, w)
	require.Len(t, timeline.Policies, 1)
	assert.Equal(t, created.ID, timeline.Policies[0].ID)
}

func TestPolicyHandler_InvalidStatusFilter(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	w := a.do(t, http.MethodGet, "/api/v1/policies?status=overdue", user, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
