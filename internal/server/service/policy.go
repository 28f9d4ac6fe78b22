package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/policy"
	"github.com/iudanet/wealthvault/internal/server/metrics"
	"github.com/iudanet/wealthvault/internal/server/storage"
	"github.com/iudanet/wealthvault/internal/validation"
)

// PolicyList список записей владельца и агрегаты по всем его записям
type PolicyList struct {
	Records []*models.PolicyRecord
	Summary models.PolicySummary
}

// PolicyService manages the policy records of an owner.
type PolicyService struct {
	logger   *slog.Logger
	policies storage.PolicyStorage
	types    *TypeService
	metrics  *metrics.Metrics
	seeding  singleflight.Group
	now      func() time.Time
}

// NewPolicyService creates a new policy service
func NewPolicyService(
	logger *slog.Logger,
	policies storage.PolicyStorage,
	types *TypeService,
	m *metrics.Metrics,
) *PolicyService {
	return &PolicyService{
		logger:   logger,
		policies: policies,
		types:    types,
		metrics:  m,
		now:      time.Now,
	}
}

// List returns the owner's records newest first, optionally filtered by status.
// An owner without records gets the demonstration portfolio on the first call.
// The summary always covers every record of the owner.
func (s *PolicyService) List(ctx context.Context, ownerID string, status models.Status) (*PolicyList, error) {
	if status != "" && !status.Valid() {
		return nil, validation.FieldErrors{"status": "status must be active, attention or expired"}
	}

	records, err := s.load(ctx, ownerID, true)
	if err != nil {
		return nil, err
	}

	return &PolicyList{
		Records: policy.Filter(records, status),
		Summary: models.Summarize(records),
	}, nil
}

// Timeline returns the owner's records ordered by next due date.
// Records without a due date go last.
func (s *PolicyService) Timeline(ctx context.Context, ownerID string) ([]*models.PolicyRecord, error) {
	records, err := s.load(ctx, ownerID, true)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].NextDueDate, records[j].NextDueDate
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})
	return records, nil
}

// Snapshot returns the owner's current records without seeding
func (s *PolicyService) Snapshot(ctx context.Context, ownerID string) ([]*models.PolicyRecord, error) {
	return s.load(ctx, ownerID, false)
}

// Get returns a single record with a freshly derived status
func (s *PolicyService) Get(ctx context.Context, ownerID, id string) (*models.PolicyRecord, error) {
	record, err := s.policies.GetPolicy(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, []*models.PolicyRecord{record})
	return record, nil
}

// Create stores a new record. A draft may leave the completeness fields empty
// (upload-assisted creation); such a record is classified as attention.
func (s *PolicyService) Create(ctx context.Context, ownerID string, input *models.PolicyRecord, draft bool) (*models.PolicyRecord, error) {
	record := input.Clone()

	validate := validation.ValidatePolicy
	if draft {
		validate = validation.ValidatePolicyDraft
	}
	if err := validate(record); err != nil {
		return nil, err
	}
	if err := s.types.CheckKind(ctx, ownerID, record.Kind); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record.ID = uuid.New().String()
	record.OwnerID = ownerID
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Status = policy.Classify(record, now)

	if err := s.policies.CreatePolicy(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to create policy",
			slog.String("user_id", ownerID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to create policy: %w", err)
	}

	s.metrics.IncrementPoliciesCreated()
	s.logger.InfoContext(ctx, "policy created",
		slog.String("user_id", ownerID),
		slog.String("policy_id", record.ID),
		slog.String("status", string(record.Status)),
	)

	return record, nil
}

// Update replaces the mutable fields of a record using the edit form rules.
// Concurrent edits resolve by last writer wins on UpdatedAt.
func (s *PolicyService) Update(ctx context.Context, ownerID, id string, input *models.PolicyRecord) (*models.PolicyRecord, error) {
	existing, err := s.policies.GetPolicy(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	record := input.Clone()
	if err := validation.ValidatePolicy(record); err != nil {
		return nil, err
	}
	// Тип, отключенный после создания записи, остается допустимым для неё
	if record.Kind != existing.Kind {
		if err := s.types.CheckKind(ctx, ownerID, record.Kind); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	record.ID = existing.ID
	record.OwnerID = existing.OwnerID
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = now
	record.Status = policy.Classify(record, now)

	if err := s.policies.UpdatePolicy(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update policy: %w", err)
	}

	s.logger.InfoContext(ctx, "policy updated",
		slog.String("user_id", ownerID),
		slog.String("policy_id", id),
		slog.String("status", string(record.Status)),
	)

	return record, nil
}

// Renew records one paid premium and moves the next due date forward by one period.
func (s *PolicyService) Renew(ctx context.Context, ownerID, id string) (*models.PolicyRecord, error) {
	record, err := s.policies.GetPolicy(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := policy.Renew(record); err != nil {
		if errors.Is(err, policy.ErrNoDueDate) {
			return nil, validation.FieldErrors{"next_due_date": "set a next due date before renewing"}
		}
		return nil, validation.FieldErrors{"payment_frequency": err.Error()}
	}

	now := s.now().UTC()
	record.UpdatedAt = now
	record.Status = policy.Classify(record, now)

	if err := s.policies.UpdatePolicy(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to renew policy: %w", err)
	}

	s.metrics.IncrementPoliciesRenewed()
	s.logger.InfoContext(ctx, "policy renewed",
		slog.String("user_id", ownerID),
		slog.String("policy_id", id),
		slog.String("next_due_date", record.NextDueDate.String()),
	)

	return record, nil
}

func (s *PolicyService) load(ctx context.Context, ownerID string, seed bool) ([]*models.PolicyRecord, error) {
	records, err := s.policies.ListPolicies(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}

	if len(records) == 0 && seed {
		if err := s.seedDemo(ctx, ownerID); err != nil {
			return nil, err
		}
		records, err = s.policies.ListPolicies(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list policies: %w", err)
		}
	}

	s.refresh(ctx, records)
	return records, nil
}

// seedDemo создает демонстрационные записи ровно один раз:
// параллельные запросы одного владельца схлопываются, повторная проверка count
// защищает от повторного засева после завершения первого.
func (s *PolicyService) seedDemo(ctx context.Context, ownerID string) error {
	_, err, _ := s.seeding.Do(ownerID, func() (any, error) {
		count, err := s.policies.CountPolicies(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to count policies: %w", err)
		}
		if count > 0 {
			return nil, nil
		}

		demo := policy.DemoRecords(ownerID, s.now().UTC())
		if err := s.policies.CreatePolicies(ctx, demo); err != nil {
			return nil, fmt.Errorf("failed to seed demo policies: %w", err)
		}

		s.metrics.IncrementDemoSeeded()
		s.logger.InfoContext(ctx, "demo policies seeded",
			slog.String("user_id", ownerID),
			slog.Int("count", len(demo)),
		)
		return nil, nil
	})
	return err
}

// refresh пересчитывает статусы; устаревшие значения в БД обновляются частично.
// Ошибка записи не мешает ответу: статус всегда вычисляется заново при чтении.
func (s *PolicyService) refresh(ctx context.Context, records []*models.PolicyRecord) {
	now := s.now().UTC()
	for _, r := range records {
		if !policy.Refresh(r, now) {
			continue
		}
		if err := s.policies.UpdatePolicyStatus(ctx, r.OwnerID, r.ID, r.Status); err != nil {
			s.logger.WarnContext(ctx, "failed to persist policy status",
				slog.String("policy_id", r.ID),
				slog.Any("error", err),
			)
		}
	}
}
