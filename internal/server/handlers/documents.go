package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/iudanet/wealthvault/internal/server/blob"
	"github.com/iudanet/wealthvault/internal/server/service"
	"github.com/iudanet/wealthvault/internal/validation"
	"github.com/iudanet/wealthvault/pkg/api"
)

// Имена полей multipart формы
const (
	formFile     = "file"
	formPassword = "password_protected"
)

// DocumentHandler обрабатывает загрузку, выдачу и распознавание документов
type DocumentHandler struct {
	responder
	documents *service.DocumentService
}

// NewDocumentHandler создает новый handler документов
func NewDocumentHandler(logger *slog.Logger, documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		responder: responder{logger: logger},
		documents: documents,
	}
}

// Upload обрабатывает POST /api/v1/documents (multipart: file, password_protected)
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	doc, err := h.documents.Upload(r.Context(), userID, upload.filename, upload.data, upload.passwordProtected)
	if err != nil {
		h.sendServiceError(w, r, err, "upload document")
		return
	}

	h.sendJSON(w, toAPIDocument(doc), http.StatusCreated)
}

// Extract обрабатывает POST /api/v1/extractions
// Загрузка всегда успешна при валидном файле; сбой распознавания дает warning
func (h *DocumentHandler) Extract(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.documents.UploadAndExtract(r.Context(), userID, upload.filename, upload.data, upload.passwordProtected)
	if err != nil {
		h.sendServiceError(w, r, err, "upload document")
		return
	}

	h.sendJSON(w, api.ExtractionResponse{
		Document:  toAPIDocument(result.Document),
		Extracted: toAPIExtracted(result.Extracted),
		Warning:   result.Warning,
	}, http.StatusOK)
}

// Download обрабатывает GET /api/v1/documents/{key}
// Публичный URL: ключ содержит случайный UUID
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	obj, data, err := h.documents.Open(r.Context(), pathParam(r, "key"))
	if err != nil {
		h.sendServiceError(w, r, err, "open document")
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	disposition := mime.FormatMediaType("inline", map[string]string{"filename": obj.Filename})
	if disposition == "" {
		disposition = "inline"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write document", slog.Any("error", err))
	}
}

type upload struct {
	filename          string
	data              []byte
	passwordProtected bool
}

func (h *DocumentHandler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	// Запас на заголовки multipart сверх лимита файла
	r.Body = http.MaxBytesReader(w, r.Body, blob.MaxSize+1<<20)

	file, header, err := r.FormFile(formFile)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendFieldErrors(w, validation.FieldErrors{formFile: blob.ErrTooLarge.Error()})
			return nil, false
		}
		h.logger.WarnContext(r.Context(), "failed to read upload", slog.Any("error", err))
		h.sendFieldErrors(w, validation.FieldErrors{formFile: "file is required"})
		return nil, false
	}
	defer file.Close()

	// Ранний отказ до чтения содержимого
	if err := blob.Validate(header.Filename, header.Size); err != nil {
		h.sendFieldErrors(w, validation.FieldErrors{formFile: err.Error()})
		return nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, blob.MaxSize+1))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read uploaded file", slog.Any("error", err))
		h.sendError(w, "failed to read file", http.StatusBadRequest)
		return nil, false
	}

	protected, _ := strconv.ParseBool(r.FormValue(formPassword))

	return &upload{
		filename:          header.Filename,
		data:              data,
		passwordProtected: protected,
	}, true
}
