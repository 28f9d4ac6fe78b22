package storage

import (
	"context"
	"time"
)

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// SaveLastReload saves the time of the last successful reload from the server
	SaveLastReload(ctx context.Context, at time.Time) error

	// GetLastReload returns the time of the last successful reload
	// Returns zero time if the list was never loaded
	GetLastReload(ctx context.Context) (time.Time, error)
}
