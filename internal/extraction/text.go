package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPTextConfig configures the document text extraction endpoint.
type HTTPTextConfig struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPTextExtractor calls a text extraction service: POST {"url"} -> {"text"}.
type HTTPTextExtractor struct {
	cfg HTTPTextConfig
}

// NewHTTPTextExtractor builds the extractor, or returns nil when no endpoint is configured.
func NewHTTPTextExtractor(cfg HTTPTextConfig) *HTTPTextExtractor {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &HTTPTextExtractor{cfg: cfg}
}

// ExtractText implements TextExtractor.
func (e *HTTPTextExtractor) ExtractText(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("document url is required")
	}

	body, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return "", fmt.Errorf("marshal text request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build text request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	res, err := e.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("text request failed: %w", err)
	}
	defer res.Body.Close()

	if err := checkStatus(res, "text"); err != nil {
		return "", err
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode text response: %w", err)
	}
	return payload.Text, nil
}

func checkStatus(res *http.Response, op string) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return fmt.Errorf("read %s error body: %w", op, err)
	}
	return fmt.Errorf("%s request status %d: %s", op, res.StatusCode, strings.TrimSpace(string(body)))
}
