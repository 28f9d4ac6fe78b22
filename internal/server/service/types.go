package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/policy"
	"github.com/iudanet/wealthvault/internal/server/storage"
	"github.com/iudanet/wealthvault/internal/validation"
)

// Внешний вид пользовательского типа по умолчанию
const (
	customIcon  = "Star"
	customColor = "gray"
)

// TypeInput данные нового пользовательского типа
type TypeInput struct {
	Name     string
	Category models.Category
	Icon     string
	Color    string
}

// TypeService manages the per-owner investment type registry.
// The registry is seeded with the default entries on first access.
type TypeService struct {
	logger  *slog.Logger
	types   storage.TypeStorage
	seeding singleflight.Group
}

// NewTypeService creates a new type registry service
func NewTypeService(logger *slog.Logger, types storage.TypeStorage) *TypeService {
	return &TypeService{logger: logger, types: types}
}

// List returns every registry entry of the owner, active or not
func (s *TypeService) List(ctx context.Context, ownerID string) ([]*models.InvestmentType, error) {
	return s.ensureSeeded(ctx, ownerID)
}

// Add registers a custom type; its key is derived from the name
func (s *TypeService) Add(ctx context.Context, ownerID string, input TypeInput) (*models.InvestmentType, error) {
	if err := validation.ValidateTypeName(input.Name); err != nil {
		return nil, err
	}
	if _, err := s.ensureSeeded(ctx, ownerID); err != nil {
		return nil, err
	}

	it := &models.InvestmentType{
		Key:      policy.TypeKey(input.Name),
		OwnerID:  ownerID,
		Name:     strings.TrimSpace(input.Name),
		Category: input.Category,
		Icon:     input.Icon,
		Color:    input.Color,
		IsActive: true,
	}
	if !it.Category.Valid() {
		it.Category = models.CategoryCustom
	}
	if it.Icon == "" {
		it.Icon = customIcon
	}
	if it.Color == "" {
		it.Color = customColor
	}

	if err := s.types.CreateTypes(ctx, []*models.InvestmentType{it}); err != nil {
		if errors.Is(err, storage.ErrTypeAlreadyExists) {
			return nil, validation.FieldErrors{"name": "a type with this name already exists"}
		}
		return nil, fmt.Errorf("failed to add investment type: %w", err)
	}

	s.logger.InfoContext(ctx, "investment type added",
		slog.String("user_id", ownerID),
		slog.String("key", it.Key),
	)
	return it, nil
}

// SetActive shows or hides a type in the creation form
func (s *TypeService) SetActive(ctx context.Context, ownerID, key string, active bool) (*models.InvestmentType, error) {
	if _, err := s.ensureSeeded(ctx, ownerID); err != nil {
		return nil, err
	}
	if err := s.types.SetTypeActive(ctx, ownerID, key, active); err != nil {
		return nil, err
	}
	return s.types.GetType(ctx, ownerID, key)
}

// Delete removes a custom or preloaded type. Default types are protected.
// Existing records keep their kind value.
func (s *TypeService) Delete(ctx context.Context, ownerID, key string) error {
	if _, err := s.ensureSeeded(ctx, ownerID); err != nil {
		return err
	}

	it, err := s.types.GetType(ctx, ownerID, key)
	if err != nil {
		return err
	}
	if it.IsDefault {
		return ErrDefaultType
	}

	if err := s.types.DeleteType(ctx, ownerID, key); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "investment type deleted",
		slog.String("user_id", ownerID),
		slog.String("key", key),
	)
	return nil
}

// CheckKind reports a validation error unless kind names an active type of the owner
func (s *TypeService) CheckKind(ctx context.Context, ownerID string, kind models.Kind) error {
	types, err := s.ensureSeeded(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, it := range types {
		if it.Key == string(kind) {
			if !it.IsActive {
				return validation.FieldErrors{"kind": fmt.Sprintf("type %q is disabled", kind)}
			}
			return nil
		}
	}
	return validation.FieldErrors{"kind": fmt.Sprintf("unknown type %q", kind)}
}

func (s *TypeService) ensureSeeded(ctx context.Context, ownerID string) ([]*models.InvestmentType, error) {
	types, err := s.types.ListTypes(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment types: %w", err)
	}
	if len(types) > 0 {
		return types, nil
	}

	_, err, _ = s.seeding.Do(ownerID, func() (any, error) {
		existing, err := s.types.ListTypes(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list investment types: %w", err)
		}
		if len(existing) > 0 {
			return nil, nil
		}

		defaults := policy.DefaultTypes()
		seed := make([]*models.InvestmentType, 0, len(defaults))
		for i := range defaults {
			defaults[i].OwnerID = ownerID
			seed = append(seed, &defaults[i])
		}

		// Другой экземпляр сервера мог успеть засеять реестр
		if err := s.types.CreateTypes(ctx, seed); err != nil && !errors.Is(err, storage.ErrTypeAlreadyExists) {
			return nil, fmt.Errorf("failed to seed investment types: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	types, err = s.types.ListTypes(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment types: %w", err)
	}
	return types, nil
}
