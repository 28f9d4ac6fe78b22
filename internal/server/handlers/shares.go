package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/wealthvault/internal/server/service"
	"github.com/iudanet/wealthvault/pkg/api"
)

// ShareHandler обрабатывает управление guardian ссылками и их просмотр
type ShareHandler struct {
	responder
	guardian *service.GuardianService
}

// NewShareHandler создает новый handler guardian ссылок
func NewShareHandler(logger *slog.Logger, guardian *service.GuardianService) *ShareHandler {
	return &ShareHandler{
		responder: responder{logger: logger},
		guardian:  guardian,
	}
}

// List обрабатывает GET /api/v1/shares
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	links, err := h.guardian.ListShares(r.Context(), userID)
	if err != nil {
		h.sendServiceError(w, r, err, "list shares")
		return
	}

	now := time.Now()
	resp := api.ShareListResponse{Shares: make([]api.Share, 0, len(links))}
	for _, link := range links {
		resp.Shares = append(resp.Shares, toAPIShare(link, link.Share.Usable(now)))
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// Create обрабатывает POST /api/v1/shares
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req api.CreateShareRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	link, err := h.guardian.CreateShare(r.Context(), userID, shareOptionsFromRequest(&req))
	if err != nil {
		h.sendServiceError(w, r, err, "create share")
		return
	}

	h.sendJSON(w, toAPIShare(link, true), http.StatusCreated)
}

// Revoke обрабатывает DELETE /api/v1/shares/{id}
func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.guardian.RevokeShare(r.Context(), userID, pathParam(r, "id")); err != nil {
		h.sendServiceError(w, r, err, "revoke share")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Resolve обрабатывает GET /api/v1/guardian?token=
// Публичный endpoint: любая ошибка токена отвечает 403 access denied
func (h *ShareHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.sendError(w, "access denied", http.StatusForbidden)
		return
	}

	view, err := h.guardian.Resolve(r.Context(), token)
	if err != nil {
		h.sendServiceError(w, r, err, "resolve guardian share")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.sendJSON(w, toAPIGuardianView(view), http.StatusOK)
}
