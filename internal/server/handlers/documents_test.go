package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/service"
	"github.com/iudanet/wealthvault/pkg/api"
)

type stubExtractor struct {
	result *models.ExtractedPolicy
	err    error
}

func (s stubExtractor) Enabled() bool { return true }

func (s stubExtractor) Extract(ctx context.Context, doc *models.DocumentRef) (*models.ExtractedPolicy, error) {
	return s.result, s.err
}

func (a *testAPI) upload(t *testing.T, path, userID, filename string, content []byte, password bool) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if password {
		require.NoError(t, mw.WriteField("password_protected", "true"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(testUserHeader, userID)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestDocumentHandler_UploadDownload(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	w := a.upload(t, "/api/v1/documents", user, "policy.pdf", []byte("%PDF-1.4 test"), true)
	require.Equal(t, http.StatusCreated, w.Code)
	doc := decodeBody[api.Document](t, w)
	assert.True(t, doc.PasswordProtected)
	assert.Equal(t, testPublicURL+"/api/v1/documents/"+doc.Ref, doc.URL)

	w = a.do(t, http.MethodGet, "/api/v1/documents/"+doc.Ref, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 test", w.Body.String())

	// Документы не удаляются: на них ссылаются записи
	w = a.do(t, http.MethodDelete, "/api/v1/documents/"+doc.Ref, user, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/documents/"+doc.Ref, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDocumentHandler_DownloadQuotesFilename(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	name := `LIC "Jeevan Anand"; bond.pdf`
	w := a.upload(t, "/api/v1/documents", user, name, []byte("%PDF-1.4"), false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decodeBody[api.Document](t, w)

	w = a.do(t, http.MethodGet, "/api/v1/documents/"+doc.Ref, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "inline", disposition)
	assert.Equal(t, name, params["filename"])
}

func TestDocumentHandler_UploadRejected(t *testing.T) {
	a := setupTestAPI(t, nil)
	user := a.createUser(t)

	w := a.upload(t, "/api/v1/documents", user, "policy.docx", []byte("doc"), false)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeBody[api.ErrorResponse](t, w).Fields, "file")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)
	req.Header.Set(testUserHeader, user)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDocumentHandler_Extract(t *testing.T) {
	number := "LIC123456789"

	tests := []struct {
		name        string
		extractor   service.Extractor
		wantWarning string
		wantNumber  bool
	}{
		{name: "disabled", extractor: nil, wantWarning: service.WarningExtractionDisabled},
		{name: "failed", extractor: stubExtractor{err: errors.New("boom")}, wantWarning: service.WarningExtractionFailed},
		{name: "extracted", extractor: stubExtractor{result: &models.ExtractedPolicy{PolicyNumber: &number}}, wantNumber: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := setupTestAPI(t, tt.extractor)
			user := a.createUser(t)

			w := a.upload(t, "/api/v1/extractions", user, "scan.png", []byte("png"), false)
			require.Equal(t, http.StatusOK, w.Code)

			resp := decodeBody[api.ExtractionResponse](t, w)
			assert.NotEmpty(t, resp.Document.Ref)
			assert.Equal(t, tt.wantWarning, resp.Warning)
			if tt.wantNumber {
				require.NotNil(t, resp.Extracted.PolicyNumber)
				assert.Equal(t, number, *resp.Extracted.PolicyNumber)
			} else {
				assert.Nil(t, resp.Extracted.PolicyNumber)
			}
		})
	}
}
