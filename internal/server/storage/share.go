package storage

import (
	"context"
	"time"

	"github.com/iudanet/wealthvault/internal/models"
)

// ShareStorage defines interface for guardian share persistence
type ShareStorage interface {
	// CreateShare stores a new share
	CreateShare(ctx context.Context, share *models.GuardianShare) error

	// GetShare retrieves share by ID regardless of owner
	// Returns ErrShareNotFound if share doesn't exist
	GetShare(ctx context.Context, id string) (*models.GuardianShare, error)

	// ListShares returns shares of the owner, newest first
	ListShares(ctx context.Context, ownerID string) ([]*models.GuardianShare, error)

	// RevokeShare marks share as revoked
	// Returns ErrShareNotFound if share doesn't exist or is already revoked
	RevokeShare(ctx context.Context, ownerID, id string, revokedAt time.Time) error
}
