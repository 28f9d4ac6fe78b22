// Package extraction распознает поля полиса в загруженном документе.
// Конвейер: текст документа по публичному URL, затем структурированная генерация по JSON схеме.
// Результат всегда частичный: любое поле может отсутствовать.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iudanet/wealthvault/internal/models"
)

// ErrDisabled extraction services are not configured
var ErrDisabled = errors.New("document extraction is not configured")

// ErrNothingExtracted the document produced no usable fields
var ErrNothingExtracted = errors.New("no policy fields found in document")

// TextExtractor returns the plain text of a document available at url
type TextExtractor interface {
	ExtractText(ctx context.Context, url string) (string, error)
}

// Generator returns a JSON object produced for prompt and constrained by schema
type Generator interface {
	GenerateObject(ctx context.Context, prompt string, schema map[string]any) (string, error)
}

// Gateway best-effort извлечение данных полиса
type Gateway struct {
	text      TextExtractor
	generator Generator
	logger    *slog.Logger
	timeout   time.Duration
}

// NewGateway creates a gateway. Nil collaborators disable extraction.
func NewGateway(text TextExtractor, generator Generator, timeout time.Duration, logger *slog.Logger) *Gateway {
	return &Gateway{
		text:      text,
		generator: generator,
		logger:    logger,
		timeout:   timeout,
	}
}

// Enabled reports whether both pipeline stages are configured
func (g *Gateway) Enabled() bool {
	return g != nil && g.text != nil && g.generator != nil
}

// Extract runs the pipeline for an uploaded document.
func (g *Gateway) Extract(ctx context.Context, doc *models.DocumentRef) (*models.ExtractedPolicy, error) {
	if !g.Enabled() {
		return nil, ErrDisabled
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.text.ExtractText(ctx, doc.URL)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNothingExtracted
	}

	raw, err := g.generator.GenerateObject(ctx, buildPrompt(text), Schema())
	if err != nil {
		return nil, fmt.Errorf("generate object: %w", err)
	}

	extracted, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse generated object: %w", err)
	}
	if extracted.IsEmpty() {
		return nil, ErrNothingExtracted
	}

	g.logger.InfoContext(ctx, "document extracted",
		slog.String("ref", doc.Ref),
		slog.Int("text_len", len(text)),
	)

	return extracted, nil
}

const promptTemplate = `Analyze this insurance/investment document text and extract key information. Look for:
- Policy number (usually starts with letters/numbers)
- Premium amount (annual, monthly, quarterly)
- Payment frequency (monthly, quarterly, yearly)
- Maturity date
- Nominee name
- Sum assured/coverage amount
- Company name
- Policy/plan name

Document text: `

// maxPromptText ограничивает объем текста документа в запросе к модели
const maxPromptText = 20000

func buildPrompt(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}
	return promptTemplate + text
}

// Schema JSON schema of the generated object
func Schema() map[string]any {
	str := map[string]any{"type": "string"}
	num := map[string]any{"type": "number"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"policyNumber": str,
			"premium":      num,
			"frequency": map[string]any{
				"type": "string",
				"enum": []string{string(models.FrequencyMonthly), string(models.FrequencyQuarterly), string(models.FrequencyYearly)},
			},
			"maturity":    str,
			"nominee":     str,
			"coverage":    num,
			"companyName": str,
			"policyName":  str,
		},
	}
}
