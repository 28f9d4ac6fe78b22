// Package api HTTP клиент WealthVault API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/wealthvault/pkg/api"
)

var (
	// ErrUnauthorized access token is missing, invalid or expired
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAccessDenied guardian link is invalid, expired or revoked
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound requested resource does not exist
	ErrNotFound = errors.New("not found")
)

// Error ошибка, возвращенная сервером
type Error struct {
	Fields     map[string]string
	Message    string
	StatusCode int
}

// Error implements error
func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for field, msg := range e.Fields {
			parts = append(parts, field+": "+msg)
		}
		slices.Sort(parts)
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Is maps status codes to sentinel errors
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrAccessDenied:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// FieldErrors returns per-field validation messages of a 422 response
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
		return apiErr.Fields
	}
	return nil
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Распознавание документа может занимать до минуты
			Timeout: 90 * time.Second,
		},
	}
}

// BaseURL returns the server URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// GetSalt получает public_salt пользователя
func (c *Client) GetSalt(ctx context.Context, username string) (*api.SaltResponse, error) {
	var resp api.SaltResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/auth/salt/"+url.PathEscape(username), "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get salt request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает refresh tokens пользователя на сервере
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// ListPolicies возвращает записи и сводку; status пустой означает все записи
func (c *Client) ListPolicies(ctx context.Context, token, status string) (*api.PolicyListResponse, error) {
	path := "/api/v1/policies"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}
	var resp api.PolicyListResponse
	if err := c.doRequest(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list policies failed: %w", err)
	}
	return &resp, nil
}

// Timeline возвращает записи по возрастанию даты платежа
func (c *Client) Timeline(ctx context.Context, token string) ([]api.Policy, error) {
	var resp api.TimelineResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/policies/timeline", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("timeline failed: %w", err)
	}
	return resp.Policies, nil
}

// GetPolicy возвращает одну запись
func (c *Client) GetPolicy(ctx context.Context, token, id string) (*api.Policy, error) {
	var resp api.Policy
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/policies/"+url.PathEscape(id), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get policy failed: %w", err)
	}
	return &resp, nil
}

// CreatePolicy создает запись
func (c *Client) CreatePolicy(ctx context.Context, token string, req api.PolicyRequest) (*api.Policy, error) {
	var resp api.Policy
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/policies", token, req, &resp); err != nil {
		return nil, fmt.Errorf("create policy failed: %w", err)
	}
	return &resp, nil
}

// UpdatePolicy заменяет изменяемые поля записи
func (c *Client) UpdatePolicy(ctx context.Context, token, id string, req api.PolicyRequest) (*api.Policy, error) {
	var resp api.Policy
	if err := c.doRequest(ctx, http.MethodPut, "/api/v1/policies/"+url.PathEscape(id), token, req, &resp); err != nil {
		return nil, fmt.Errorf("update policy failed: %w", err)
	}
	return &resp, nil
}

// RenewPolicy сдвигает дату следующего платежа на один период
func (c *Client) RenewPolicy(ctx context.Context, token, id string) (*api.Policy, error) {
	var resp api.Policy
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/policies/"+url.PathEscape(id)+"/renew", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("renew policy failed: %w", err)
	}
	return &resp, nil
}

// ListTypes возвращает реестр типов
func (c *Client) ListTypes(ctx context.Context, token string) ([]api.InvestmentType, error) {
	var resp api.TypeListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/types", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list types failed: %w", err)
	}
	return resp.Types, nil
}

// CreateType добавляет пользовательский тип
func (c *Client) CreateType(ctx context.Context, token string, req api.CreateTypeRequest) (*api.InvestmentType, error) {
	var resp api.InvestmentType
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/types", token, req, &resp); err != nil {
		return nil, fmt.Errorf("create type failed: %w", err)
	}
	return &resp, nil
}

// SetTypeActive включает или выключает тип
func (c *Client) SetTypeActive(ctx context.Context, token, key string, active bool) (*api.InvestmentType, error) {
	var resp api.InvestmentType
	req := api.UpdateTypeRequest{IsActive: &active}
	if err := c.doRequest(ctx, http.MethodPatch, "/api/v1/types/"+url.PathEscape(key), token, req, &resp); err != nil {
		return nil, fmt.Errorf("update type failed: %w", err)
	}
	return &resp, nil
}

// DeleteType удаляет пользовательский тип
func (c *Client) DeleteType(ctx context.Context, token, key string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v1/types/"+url.PathEscape(key), token, nil, nil); err != nil {
		return fmt.Errorf("delete type failed: %w", err)
	}
	return nil
}

// ListShares возвращает выданные guardian ссылки
func (c *Client) ListShares(ctx context.Context, token string) ([]api.Share, error) {
	var resp api.ShareListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/shares", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list shares failed: %w", err)
	}
	return resp.Shares, nil
}

// CreateShare выпускает guardian ссылку
func (c *Client) CreateShare(ctx context.Context, token string, req api.CreateShareRequest) (*api.Share, error) {
	var resp api.Share
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/shares", token, req, &resp); err != nil {
		return nil, fmt.Errorf("create share failed: %w", err)
	}
	return &resp, nil
}

// RevokeShare отзывает guardian ссылку
func (c *Client) RevokeShare(ctx context.Context, token, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v1/shares/"+url.PathEscape(id), token, nil, nil); err != nil {
		return fmt.Errorf("revoke share failed: %w", err)
	}
	return nil
}

// ResolveGuardian открывает guardian view по токену ссылки; сессия не нужна
func (c *Client) ResolveGuardian(ctx context.Context, guardianToken string) (*api.GuardianView, error) {
	var resp api.GuardianView
	path := "/api/v1/guardian?" + url.Values{"token": {guardianToken}}.Encode()
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("resolve guardian link failed: %w", err)
	}
	return &resp, nil
}

// UploadDocument загружает документ без распознавания
func (c *Client) UploadDocument(ctx context.Context, token, filename string, content io.Reader, passwordProtected bool) (*api.Document, error) {
	var resp api.Document
	if err := c.doMultipart(ctx, "/api/v1/documents", token, filename, content, passwordProtected, &resp); err != nil {
		return nil, fmt.Errorf("upload document failed: %w", err)
	}
	return &resp, nil
}

// ExtractDocument загружает документ и распознает поля полиса
func (c *Client) ExtractDocument(ctx context.Context, token, filename string, content io.Reader, passwordProtected bool) (*api.ExtractionResponse, error) {
	var resp api.ExtractionResponse
	if err := c.doMultipart(ctx, "/api/v1/extractions", token, filename, content, passwordProtected, &resp); err != nil {
		return nil, fmt.Errorf("extract document failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) doMultipart(ctx context.Context, path, token, filename string, content io.Reader, passwordProtected bool, result any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.WriteField("password_protected", strconv.FormatBool(passwordProtected)); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.send(req, token, result)
}

// doRequest выполняет HTTP запрос с JSON телом
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, token, result)
}

func (c *Client) send(req *http.Request, token string, result any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Message = errResp.Message
			apiErr.Fields = errResp.Fields
			if apiErr.Message == "" {
				apiErr.Message = errResp.Error
			}
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
