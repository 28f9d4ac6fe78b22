package storage

import (
	"context"

	"github.com/iudanet/wealthvault/internal/models"
)

// PolicyStorage defines interface for policy record persistence.
// Every method is scoped by owner: records of other owners are reported as ErrPolicyNotFound.
type PolicyStorage interface {
	// ListPolicies returns all records of the owner, newest first (created_at DESC)
	// Returns empty slice if owner has no records
	ListPolicies(ctx context.Context, ownerID string) ([]*models.PolicyRecord, error)

	// GetPolicy retrieves a single record
	// Returns ErrPolicyNotFound if record doesn't exist
	GetPolicy(ctx context.Context, ownerID, id string) (*models.PolicyRecord, error)

	// CreatePolicy inserts a new record
	CreatePolicy(ctx context.Context, record *models.PolicyRecord) error

	// CreatePolicies inserts several records in one transaction
	CreatePolicies(ctx context.Context, records []*models.PolicyRecord) error

	// UpdatePolicy replaces the mutable columns of an existing record
	// Returns ErrPolicyNotFound if record doesn't exist
	UpdatePolicy(ctx context.Context, record *models.PolicyRecord) error

	// UpdatePolicyStatus rewrites only the persisted status column
	// Returns ErrPolicyNotFound if record doesn't exist
	UpdatePolicyStatus(ctx context.Context, ownerID, id string, status models.Status) error

	// CountPolicies returns the number of records of the owner
	CountPolicies(ctx context.Context, ownerID string) (int, error)
}
