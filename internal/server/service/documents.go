package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/iudanet/wealthvault/internal/extraction"
	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/blob"
	"github.com/iudanet/wealthvault/internal/server/metrics"
)

// Предупреждения для ручного ввода, когда распознавание не удалось
const (
	WarningExtractionDisabled = "automatic extraction is not configured, please fill in the details manually"
	WarningExtractionFailed   = "could not read the document automatically, please fill in the details manually"
	WarningPasswordProtected  = "the document is password protected, please fill in the details manually"
)

// BlobStore хранилище загруженных документов
type BlobStore interface {
	Put(ctx context.Context, ownerID, filename string, data []byte, passwordProtected bool) (*blob.Object, error)
	Get(ctx context.Context, key string) (*blob.Object, []byte, error)
	Delete(ctx context.Context, key string) error
}

// Extractor распознает поля полиса в загруженном документе
type Extractor interface {
	Enabled() bool
	Extract(ctx context.Context, doc *models.DocumentRef) (*models.ExtractedPolicy, error)
}

// ExtractionResult документ и best-effort результат распознавания
type ExtractionResult struct {
	Document  *models.DocumentRef
	Extracted *models.ExtractedPolicy
	Warning   string
}

// DocumentService stores uploaded documents and runs extraction on them.
type DocumentService struct {
	logger    *slog.Logger
	blobs     BlobStore
	extractor Extractor
	metrics   *metrics.Metrics
	publicURL string
}

// NewDocumentService creates a new document service. extractor may be nil.
func NewDocumentService(
	logger *slog.Logger,
	blobs BlobStore,
	extractor Extractor,
	m *metrics.Metrics,
	publicURL string,
) *DocumentService {
	return &DocumentService{
		logger:    logger,
		blobs:     blobs,
		extractor: extractor,
		metrics:   m,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Upload stores a document and returns its public reference
func (s *DocumentService) Upload(ctx context.Context, ownerID, filename string, data []byte, passwordProtected bool) (*models.DocumentRef, error) {
	obj, err := s.blobs.Put(ctx, ownerID, filename, data, passwordProtected)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "document uploaded",
		slog.String("user_id", ownerID),
		slog.String("content_type", obj.ContentType),
		slog.Int64("size", obj.Size),
	)

	return &models.DocumentRef{
		Ref:               obj.Key,
		URL:               s.DocumentURL(obj.Key),
		ContentType:       obj.ContentType,
		Size:              obj.Size,
		PasswordProtected: obj.PasswordProtected,
	}, nil
}

// UploadAndExtract stores a document and tries to read policy fields from it.
// Only the upload can fail: an extraction problem degrades to an empty result with a warning.
func (s *DocumentService) UploadAndExtract(ctx context.Context, ownerID, filename string, data []byte, passwordProtected bool) (*ExtractionResult, error) {
	doc, err := s.Upload(ctx, ownerID, filename, data, passwordProtected)
	if err != nil {
		return nil, err
	}

	result := &ExtractionResult{
		Document:  doc,
		Extracted: &models.ExtractedPolicy{},
	}

	switch {
	case s.extractor == nil || !s.extractor.Enabled():
		s.metrics.ObserveExtraction(metrics.ResultDisabled)
		result.Warning = WarningExtractionDisabled
	case passwordProtected:
		s.metrics.ObserveExtraction(metrics.ResultDisabled)
		result.Warning = WarningPasswordProtected
	default:
		extracted, err := s.extractor.Extract(ctx, doc)
		if err != nil {
			s.metrics.ObserveExtraction(metrics.ResultFailed)
			s.logger.WarnContext(ctx, "document extraction failed",
				slog.String("user_id", ownerID),
				slog.Bool("nothing_extracted", errors.Is(err, extraction.ErrNothingExtracted)),
				slog.Any("error", err),
			)
			result.Warning = WarningExtractionFailed
			break
		}
		s.metrics.ObserveExtraction(metrics.ResultOK)
		result.Extracted = extracted
	}

	return result, nil
}

// Open returns a stored document by key
func (s *DocumentService) Open(ctx context.Context, key string) (*blob.Object, []byte, error) {
	return s.blobs.Get(ctx, key)
}

// DocumentURL public address of a stored document
func (s *DocumentService) DocumentURL(key string) string {
	return s.publicURL + "/api/v1/documents/" + url.PathEscape(key)
}
