package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/wealthvault/internal/server/blob"
	"github.com/iudanet/wealthvault/internal/server/service"
	"github.com/iudanet/wealthvault/internal/server/storage"
	"github.com/iudanet/wealthvault/internal/validation"
	"github.com/iudanet/wealthvault/pkg/api"
)

// maxBodySize ограничение JSON тела запроса
const maxBodySize = 1 << 20

// responder общие методы ответа для всех handlers
type responder struct {
	logger *slog.Logger
}

// sendJSON отправляет JSON ответ
func (h responder) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}

// sendFieldErrors отправляет 422 с ошибками по полям
func (h responder) sendFieldErrors(w http.ResponseWriter, fields validation.FieldErrors) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(http.StatusUnprocessableEntity),
		Message: "validation failed",
		Fields:  fields,
	}
	h.sendJSON(w, resp, http.StatusUnprocessableEntity)
}

// decodeJSON разбирает тело запроса; при ошибке ответ уже отправлен
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// sendServiceError переводит ошибку сервиса в HTTP ответ
func (h responder) sendServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var fields validation.FieldErrors
	switch {
	case errors.As(err, &fields):
		h.sendFieldErrors(w, fields)
	case errors.Is(err, service.ErrAccessDenied):
		h.sendError(w, "access denied", http.StatusForbidden)
	case errors.Is(err, storage.ErrPolicyNotFound):
		h.sendError(w, "policy not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrTypeNotFound):
		h.sendError(w, "investment type not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrShareNotFound):
		h.sendError(w, "share not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrBlobNotFound):
		h.sendError(w, "document not found", http.StatusNotFound)
	case errors.Is(err, service.ErrDefaultType):
		h.sendError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, blob.ErrTooLarge), errors.Is(err, blob.ErrUnsupportedType):
		h.sendFieldErrors(w, validation.FieldErrors{"file": err.Error()})
	default:
		h.logger.ErrorContext(r.Context(), "failed to "+op, slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
	}
}

// bearerToken извлекает токен из "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
