package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/service"
	"github.com/iudanet/wealthvault/internal/validation"
	"github.com/iudanet/wealthvault/pkg/api"
)

// TypeHandler обрабатывает запросы к реестру типов
type TypeHandler struct {
	responder
	types *service.TypeService
}

// NewTypeHandler создает новый handler реестра типов
func NewTypeHandler(logger *slog.Logger, types *service.TypeService) *TypeHandler {
	return &TypeHandler{
		responder: responder{logger: logger},
		types:     types,
	}
}

// List обрабатывает GET /api/v1/types
func (h *TypeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	types, err := h.types.List(r.Context(), userID)
	if err != nil {
		h.sendServiceError(w, r, err, "list investment types")
		return
	}

	resp := api.TypeListResponse{Types: make([]api.InvestmentType, 0, len(types))}
	for _, it := range types {
		resp.Types = append(resp.Types, toAPIType(it))
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// Create обрабатывает POST /api/v1/types
func (h *TypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req api.CreateTypeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	it, err := h.types.Add(r.Context(), userID, service.TypeInput{
		Name:     req.Name,
		Category: models.Category(req.Category),
		Icon:     req.Icon,
		Color:    req.Color,
	})
	if err != nil {
		h.sendServiceError(w, r, err, "add investment type")
		return
	}

	h.sendJSON(w, toAPIType(it), http.StatusCreated)
}

// Update обрабатывает PATCH /api/v1/types/{key}
func (h *TypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req api.UpdateTypeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		h.sendFieldErrors(w, validation.FieldErrors{"is_active": "is_active is required"})
		return
	}

	it, err := h.types.SetActive(r.Context(), userID, pathParam(r, "key"), *req.IsActive)
	if err != nil {
		h.sendServiceError(w, r, err, "update investment type")
		return
	}

	h.sendJSON(w, toAPIType(it), http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/types/{key}
func (h *TypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.types.Delete(r.Context(), userID, pathParam(r, "key")); err != nil {
		h.sendServiceError(w, r, err, "delete investment type")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
