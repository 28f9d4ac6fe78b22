package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wealthvault/pkg/api"
)

func TestTypeHandler_Lifecycle(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	w := a.do(t, http.MethodGet, "/api/v1/types", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[api.TypeListResponse](t, w).Types, 10)

	w = a.do(t, http.MethodPost, "/api/v1/types", user, api.CreateTypeRequest{Name: "Gold Bonds"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[api.InvestmentType](t, w)
	assert.Equal(t, "gold_bonds", created.Key)
	assert.Equal(t, "Custom", created.Category)

	w = a.do(t, http.MethodPost, "/api/v1/types", user, api.CreateTypeRequest{Name: "Gold Bonds"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	inactive := false
	w = a.do(t, http.MethodPatch, "/api/v1/types/gold_bonds", user, api.UpdateTypeRequest{IsActive: &inactive})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeBody[api.InvestmentType](t, w).IsActive)

	w = a.do(t, http.MethodPatch, "/api/v1/types/gold_bonds", user, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(t, http.MethodDelete, "/api/v1/types/gold_bonds", user, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTypeHandler_DeleteErrors(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	w := a.do(t, http.MethodDelete, "/api/v1/types/LIC", user, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodDelete, "/api/v1/types/unknown", user, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
