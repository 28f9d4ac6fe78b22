// Package data работает со списком записей владельца на стороне клиента.
// Сервер хранит авторитетное состояние; локально держится зашифрованный снимок
// последнего загруженного списка для просмотра без сети.
package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/iudanet/wealthvault/internal/client/storage"
	"github.com/iudanet/wealthvault/internal/crypto"
	"github.com/iudanet/wealthvault/pkg/api"
)

// ErrNoSnapshot the list was never loaded on this device
var ErrNoSnapshot = errors.New("no cached records, run 'wealthvault list' while online")

// API endpoints of the server used by the service
type API interface {
	ListPolicies(ctx context.Context, token, status string) (*api.PolicyListResponse, error)
	Timeline(ctx context.Context, token string) ([]api.Policy, error)
	GetPolicy(ctx context.Context, token, id string) (*api.Policy, error)
	CreatePolicy(ctx context.Context, token string, req api.PolicyRequest) (*api.Policy, error)
	UpdatePolicy(ctx context.Context, token, id string, req api.PolicyRequest) (*api.Policy, error)
	RenewPolicy(ctx context.Context, token, id string) (*api.Policy, error)

	ListTypes(ctx context.Context, token string) ([]api.InvestmentType, error)
	CreateType(ctx context.Context, token string, req api.CreateTypeRequest) (*api.InvestmentType, error)
	SetTypeActive(ctx context.Context, token, key string, active bool) (*api.InvestmentType, error)
	DeleteType(ctx context.Context, token, key string) error

	ListShares(ctx context.Context, token string) ([]api.Share, error)
	CreateShare(ctx context.Context, token string, req api.CreateShareRequest) (*api.Share, error)
	RevokeShare(ctx context.Context, token, id string) error

	UploadDocument(ctx context.Context, token, filename string, content io.Reader, passwordProtected bool) (*api.Document, error)
	ExtractDocument(ctx context.Context, token, filename string, content io.Reader, passwordProtected bool) (*api.ExtractionResponse, error)
}

// Session источник access token и ключа шифрования снимка
type Session interface {
	AccessToken(ctx context.Context) (string, error)
	EncryptionKey() []byte
}

// Snapshot загруженный список записей и сводка
type Snapshot struct {
	LoadedAt time.Time         `json:"loaded_at"`
	Policies []api.Policy      `json:"policies"`
	Summary  api.PolicySummary `json:"summary"`
}

// Filter returns the records with the given status; empty status keeps all
func (s *Snapshot) Filter(status string) []api.Policy {
	if status == "" {
		return s.Policies
	}
	out := make([]api.Policy, 0, len(s.Policies))
	for _, p := range s.Policies {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// Service client-side operations on records, types, shares and documents
type Service struct {
	api       API
	session   Session
	snapshots storage.SnapshotStorage
	metadata  storage.MetadataStorage
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a data service
func NewService(logger *slog.Logger, client API, session Session, snapshots storage.SnapshotStorage, metadata storage.MetadataStorage) *Service {
	return &Service{
		api:       client,
		session:   session,
		snapshots: snapshots,
		metadata:  metadata,
		logger:    logger,
		now:       time.Now,
	}
}

// Reload fetches the full list from the server and refreshes the local snapshot
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.api.ListPolicies(ctx, token, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	snap := &Snapshot{
		Policies: resp.Policies,
		Summary:  resp.Summary,
		LoadedAt: s.now().UTC(),
	}
	if snap.Policies == nil {
		snap.Policies = []api.Policy{}
	}

	// Снимок нужен только для офлайн просмотра, ошибка кеша не ломает загрузку
	if err := s.saveSnapshot(ctx, snap); err != nil {
		s.logger.WarnContext(ctx, "failed to cache records", slog.Any("error", err))
	}

	return snap, nil
}

// Cached returns the last snapshot stored on this device
func (s *Service) Cached(ctx context.Context) (*Snapshot, error) {
	sealed, err := s.snapshots.GetSnapshot(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to read cached records: %w", err)
	}

	snap := &Snapshot{}
	if err := crypto.OpenJSON(sealed, s.session.EncryptionKey(), snap); err != nil {
		return nil, fmt.Errorf("failed to decrypt cached records: %w", err)
	}
	return snap, nil
}

// LastReload returns the time of the last successful reload; zero if never
func (s *Service) LastReload(ctx context.Context) (time.Time, error) {
	return s.metadata.GetLastReload(ctx)
}

// Get returns a single record from the server
func (s *Service) Get(ctx context.Context, id string) (*api.Policy, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.GetPolicy(ctx, token, id)
}

// Timeline returns records ordered by next due date
func (s *Service) Timeline(ctx context.Context) ([]api.Policy, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.Timeline(ctx, token)
}

// Create saves a new record and waits for the list reload
func (s *Service) Create(ctx context.Context, req api.PolicyRequest) (*api.Policy, error) {
	return s.mutate(ctx, "create", func(token string) (*api.Policy, error) {
		return s.api.CreatePolicy(ctx, token, req)
	})
}

// Update replaces the editable fields of a record and waits for the list reload
func (s *Service) Update(ctx context.Context, id string, req api.PolicyRequest) (*api.Policy, error) {
	return s.mutate(ctx, "update", func(token string) (*api.Policy, error) {
		return s.api.UpdatePolicy(ctx, token, id, req)
	})
}

// Renew records a payment and waits for the list reload
func (s *Service) Renew(ctx context.Context, id string) (*api.Policy, error) {
	return s.mutate(ctx, "renew", func(token string) (*api.Policy, error) {
		return s.api.RenewPolicy(ctx, token, id)
	})
}

// mutate выполняет изменение и перезагружает список.
// При ошибке список все равно перезагружается, чтобы локальное состояние совпадало с сервером.
func (s *Service) mutate(ctx context.Context, op string, call func(token string) (*api.Policy, error)) (*api.Policy, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	policy, err := call(token)
	if err != nil {
		if _, reloadErr := s.Reload(ctx); reloadErr != nil {
			s.logger.WarnContext(ctx, "failed to reload records after error",
				slog.String("op", op),
				slog.Any("error", reloadErr),
			)
		}
		return nil, fmt.Errorf("failed to %s record: %w", op, err)
	}

	if _, err := s.Reload(ctx); err != nil {
		return policy, fmt.Errorf("record saved but list reload failed: %w", err)
	}
	return policy, nil
}

// Types returns the investment type registry
func (s *Service) Types(ctx context.Context) ([]api.InvestmentType, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.ListTypes(ctx, token)
}

// AddType creates a custom investment type
func (s *Service) AddType(ctx context.Context, req api.CreateTypeRequest) (*api.InvestmentType, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.CreateType(ctx, token, req)
}

// SetTypeActive enables or disables a type for new records
func (s *Service) SetTypeActive(ctx context.Context, key string, active bool) (*api.InvestmentType, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.SetTypeActive(ctx, token, key, active)
}

// RemoveType deletes a custom type
func (s *Service) RemoveType(ctx context.Context, key string) error {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	return s.api.DeleteType(ctx, token, key)
}

// Shares returns issued guardian links
func (s *Service) Shares(ctx context.Context) ([]api.Share, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.ListShares(ctx, token)
}

// CreateShare issues a guardian link
func (s *Service) CreateShare(ctx context.Context, req api.CreateShareRequest) (*api.Share, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.CreateShare(ctx, token, req)
}

// RevokeShare invalidates a guardian link
func (s *Service) RevokeShare(ctx context.Context, id string) error {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	return s.api.RevokeShare(ctx, token, id)
}

// Upload stores a document without extraction
func (s *Service) Upload(ctx context.Context, filename string, content io.Reader, passwordProtected bool) (*api.Document, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.UploadDocument(ctx, token, filename, content, passwordProtected)
}

// Extract uploads a document and returns the fields recognized in it
func (s *Service) Extract(ctx context.Context, filename string, content io.Reader, passwordProtected bool) (*api.ExtractionResponse, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.ExtractDocument(ctx, token, filename, content, passwordProtected)
}

// Clear removes the cached snapshot; called on logout
func (s *Service) Clear(ctx context.Context) error {
	if err := s.snapshots.DeleteSnapshot(ctx); err != nil && !errors.Is(err, storage.ErrSnapshotNotFound) {
		return fmt.Errorf("failed to delete cached records: %w", err)
	}
	return nil
}

func (s *Service) saveSnapshot(ctx context.Context, snap *Snapshot) error {
	key := s.session.EncryptionKey()
	if key == nil {
		return fmt.Errorf("session has no encryption key")
	}

	sealed, err := crypto.SealJSON(snap, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt snapshot: %w", err)
	}
	if err := s.snapshots.SaveSnapshot(ctx, sealed); err != nil {
		return err
	}
	return s.metadata.SaveLastReload(ctx, snap.LoadedAt)
}
