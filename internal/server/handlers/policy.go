package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/service"
	"github.com/iudanet/wealthvault/pkg/api"
)

// PolicyHandler обрабатывает запросы к записям владельца
type PolicyHandler struct {
	responder
	policies *service.PolicyService
}

// NewPolicyHandler создает новый handler для записей
func NewPolicyHandler(logger *slog.Logger, policies *service.PolicyService) *PolicyHandler {
	return &PolicyHandler{
		responder: responder{logger: logger},
		policies:  policies,
	}
}

// List обрабатывает GET /api/v1/policies?status=
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	status := models.Status(r.URL.Query().Get("status"))
	list, err := h.policies.List(r.Context(), userID, status)
	if err != nil {
		h.sendServiceError(w, r, err, "list policies")
		return
	}

	h.sendJSON(w, api.PolicyListResponse{
		Policies: toAPIPolicies(list.Records),
		Summary:  toAPISummary(list.Summary),
	}, http.StatusOK)
}

// Timeline обрабатывает GET /api/v1/policies/timeline
func (h *PolicyHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	records, err := h.policies.Timeline(r.Context(), userID)
	if err != nil {
		h.sendServiceError(w, r, err, "build timeline")
		return
	}

	h.sendJSON(w, api.TimelineResponse{Policies: toAPIPolicies(records)}, http.StatusOK)
}

// Get обрабатывает GET /api/v1/policies/{id}
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	record, err := h.policies.Get(r.Context(), userID, pathParam(r, "id"))
	if err != nil {
		h.sendServiceError(w, r, err, "get policy")
		return
	}

	h.sendJSON(w, toAPIPolicy(record), http.StatusOK)
}

// Create обрабатывает POST /api/v1/policies
func (h *PolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req api.PolicyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	input, err := policyFromRequest(&req)
	if err != nil {
		h.sendServiceError(w, r, err, "create policy")
		return
	}

	record, err := h.policies.Create(r.Context(), userID, input, req.Draft)
	if err != nil {
		h.sendServiceError(w, r, err, "create policy")
		return
	}

	h.sendJSON(w, toAPIPolicy(record), http.StatusCreated)
}

// Update обрабатывает PUT /api/v1/policies/{id}
func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req api.PolicyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	input, err := policyFromRequest(&req)
	if err != nil {
		h.sendServiceError(w, r, err, "update policy")
		return
	}

	record, err := h.policies.Update(r.Context(), userID, pathParam(r, "id"), input)
	if err != nil {
		h.sendServiceError(w, r, err, "update policy")
		return
	}

	h.sendJSON(w, toAPIPolicy(record), http.StatusOK)
}

// Renew обрабатывает POST /api/v1/policies/{id}/renew
func (h *PolicyHandler) Renew(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	record, err := h.policies.Renew(r.Context(), userID, pathParam(r, "id"))
	if err != nil {
		h.sendServiceError(w, r, err, "renew policy")
		return
	}

	h.sendJSON(w, toAPIPolicy(record), http.StatusOK)
}

// requireUser достает владельца из контекста; без него отвечает 401
func (h responder) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
	}
	return userID, ok
}
