package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/wealthvault/internal/client/storage"
)

var snapshotKey = []byte("policies")

// SaveSnapshot replaces the cached record list
func (s *Storage) SaveSnapshot(ctx context.Context, data []byte) error {
	if err := s.put(bucketSnapshot, snapshotKey, data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns storage.ErrSnapshotNotFound until the first reload
func (s *Storage) GetSnapshot(ctx context.Context) ([]byte, error) {
	return s.get(bucketSnapshot, snapshotKey, storage.ErrSnapshotNotFound)
}

// DeleteSnapshot drops the cache; missing cache is not an error
func (s *Storage) DeleteSnapshot(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshot).Delete(snapshotKey)
	})
}
