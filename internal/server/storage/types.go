package storage

import (
	"context"

	"github.com/iudanet/wealthvault/internal/models"
)

// TypeStorage defines interface for the per-owner investment type registry
type TypeStorage interface {
	// ListTypes returns registry entries of the owner in insertion order
	// Returns empty slice if registry is not seeded yet
	ListTypes(ctx context.Context, ownerID string) ([]*models.InvestmentType, error)

	// GetType retrieves a single entry
	// Returns ErrTypeNotFound if entry doesn't exist
	GetType(ctx context.Context, ownerID, key string) (*models.InvestmentType, error)

	// CreateTypes inserts entries in one transaction
	// Returns ErrTypeAlreadyExists if any key is taken
	CreateTypes(ctx context.Context, types []*models.InvestmentType) error

	// SetTypeActive toggles visibility of an entry
	// Returns ErrTypeNotFound if entry doesn't exist
	SetTypeActive(ctx context.Context, ownerID, key string, active bool) error

	// DeleteType removes an entry
	// Returns ErrTypeNotFound if entry doesn't exist
	DeleteType(ctx context.Context, ownerID, key string) error
}
